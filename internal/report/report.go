// Package report renders project progress reports as PDF documents.
package report

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
)

const (
	margin     = 40.0
	imageWidth = 200.0
	dateLayout = "2006-01-02"
)

type rgb struct{ r, g, b int }

var (
	ink     = rgb{15, 23, 42}
	muted   = rgb{100, 116, 139}
	subtle  = rgb{71, 85, 105}
	divider = rgb{226, 232, 240}
)

// Input is everything a report is built from. Logs are rendered in the given order.
type Input struct {
	Project     models.Project
	Logs        []models.DailyLog
	Attachments []models.Attachment
	GeneratedAt time.Time
	// UploadDir is where image embeds are looked up. Files missing there are skipped.
	UploadDir string
}

// Render writes the report to w. One page per log; zero logs yields the summary page only.
func Render(w io.Writer, in Input) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle("Project Progress Report", true)
	pdf.SetCreator("site-tracker", true)
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetCatalogSort(true)

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), uploadDir: in.UploadDir}
	pdf.AddPage()
	r.header(in.GeneratedAt)
	r.summary(in.Project, in.Logs)

	byLog := attachmentsByLog(in.Attachments)
	for i, log := range in.Logs {
		r.log(log, byLog[log.ID])
		if i < len(in.Logs)-1 {
			pdf.AddPage()
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// attachmentsByLog groups attachments per log in upload order, whatever order they arrive in.
func attachmentsByLog(atts []models.Attachment) map[uuid.UUID][]models.Attachment {
	byLog := make(map[uuid.UUID][]models.Attachment)
	for _, a := range atts {
		byLog[a.DailyLogID] = append(byLog[a.DailyLogID], a)
	}
	for _, group := range byLog {
		slices.SortStableFunc(group, func(a, b models.Attachment) int {
			return a.UploadedAt.Compare(b.UploadedAt)
		})
	}
	return byLog
}

type renderer struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	uploadDir string
}

func (r *renderer) text(size float64, style string, c rgb, s string) {
	r.pdf.SetFont("Helvetica", style, size)
	r.pdf.SetTextColor(c.r, c.g, c.b)
	r.pdf.MultiCell(0, size*1.3, r.tr(s), "", "L", false)
}

func (r *renderer) rule() {
	w, _ := r.pdf.GetPageSize()
	y := r.pdf.GetY()
	r.pdf.SetDrawColor(divider.r, divider.g, divider.b)
	r.pdf.Line(margin, y, w-margin, y)
}

func (r *renderer) header(generated time.Time) {
	r.text(20, "B", ink, "Project Progress Report")
	r.text(10, "", muted, "Generated: "+formatDate(generated))
	r.pdf.Ln(6)
	r.rule()
	r.pdf.Ln(14)
}

func (r *renderer) summary(p models.Project, logs []models.DailyLog) {
	r.text(12, "B", ink, p.Name)
	r.text(10, "", subtle, "Client: "+p.Client)
	r.text(10, "", subtle, "Site Address: "+p.SiteAddress)
	r.text(10, "", subtle, "Status: "+p.Status)
	r.text(10, "", subtle, "Date Range: "+dateRange(logs))
	r.pdf.Ln(16)
}

func (r *renderer) log(l models.DailyLog, attachments []models.Attachment) {
	r.text(12, "B", ink, "Daily Log · "+formatDate(l.Date))
	r.pdf.Ln(4)
	r.rule()
	r.pdf.Ln(6)

	r.text(10, "", ink, "Area: "+l.SiteArea)
	r.text(10, "", ink, "Activity: "+l.ActivityType)
	r.text(10, "", ink, "Weather: "+weatherLine(l.Weather))
	r.pdf.Ln(3)
	r.text(10, "", ink, "Summary: "+l.Summary)
	if l.IssuesRisks != "" {
		r.text(10, "", ink, "Issues/Risks: "+l.IssuesRisks)
	}
	if l.NextSteps != "" {
		r.text(10, "", ink, "Next Steps: "+l.NextSteps)
	}

	if l.PotentialClaim {
		r.pdf.Ln(2)
		r.text(10, "U", ink, "Potential Claim Details:")
		for _, f := range []struct{ label, value string }{
			{"Delay Cause", l.DelayCause},
			{"Instruction Ref", l.InstructionRef},
			{"Impact", l.Impact},
			{"Cost Note", l.CostNote},
		} {
			if f.value != "" {
				r.text(10, "", ink, f.label+": "+f.value)
			}
		}
	}

	if len(attachments) == 0 {
		return
	}
	r.pdf.Ln(4)
	r.text(10, "B", ink, "Attachments")
	r.pdf.Ln(2)
	r.rule()
	r.pdf.Ln(3)
	for _, a := range attachments {
		r.text(9, "", ink, "• "+a.Label())
		if a.IsImage() {
			r.embed(a)
		}
		r.pdf.Ln(4)
	}
}

// embed draws the image when a decodable copy exists under the upload dir.
func (r *renderer) embed(a models.Attachment) {
	p, ok := LocalImagePath(r.uploadDir, a.FileURL)
	if !ok {
		return
	}
	kind, ok := imageKind(p)
	if !ok {
		return
	}
	r.pdf.ImageOptions(p, -1, 0, imageWidth, 0, true, fpdf.ImageOptions{ImageType: kind}, 0, "")
}

// LocalImagePath maps an attachment URL containing /uploads/ onto uploadDir.
// It reports false when the URL has no local counterpart or the file is absent.
func LocalImagePath(uploadDir, fileURL string) (string, bool) {
	if uploadDir == "" || fileURL == "" {
		return "", false
	}
	p := fileURL
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		p = u.Path
	}
	i := strings.Index(p, "/uploads/")
	if i < 0 {
		return "", false
	}
	rel := path.Clean("/" + p[i+len("/uploads/"):])
	if rel == "/" {
		return "", false
	}
	full := filepath.Join(uploadDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}

func imageKind(p string) (string, bool) {
	f, err := os.Open(p)
	if err != nil {
		return "", false
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", false
	}
	switch format {
	case "jpeg":
		return "JPG", true
	case "png":
		return "PNG", true
	}
	return "", false
}

func weatherLine(w models.Weather) string {
	condition := w.Condition
	if condition == "" {
		condition = "n/a"
	}
	if w.Notes != "" {
		return condition + " (" + w.Notes + ")"
	}
	return condition
}

func dateRange(logs []models.DailyLog) string {
	if len(logs) == 0 {
		return "n/a"
	}
	oldest, newest := logs[0].Date, logs[0].Date
	for _, l := range logs[1:] {
		if l.Date.Before(oldest) {
			oldest = l.Date
		}
		if l.Date.After(newest) {
			newest = l.Date
		}
	}
	return formatDate(oldest) + " to " + formatDate(newest)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
