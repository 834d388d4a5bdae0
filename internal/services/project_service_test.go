package services

import (
	"context"
	"testing"

	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectValidation(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner@x.com", "")

	_, err := e.projects.CreateProject(context.Background(), owner, ProjectInput{Name: "Only a name"})
	requireCode(t, err, appErr.CodeInvalid)
	require.Contains(t, err.Error(), "Missing required project fields.")

	p := e.project(t, owner)
	require.Equal(t, models.ProjectActive, p.Status)
	require.False(t, p.Archived)
	require.Equal(t, owner.UserID, p.CreatedBy)
	require.True(t, e.recorder.has("project.create"))
}

func TestProjectOwnershipGuard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@x.com", "")
	other := e.user(t, "other@x.com", "")
	admin := e.user(t, "admin@x.com", models.RoleAdmin)
	p := e.project(t, owner)

	_, err := e.projects.GetProject(ctx, other, p.ID)
	requireCode(t, err, appErr.CodeForbidden)

	got, err := e.projects.GetProject(ctx, admin, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	mine, err := e.projects.ListProjects(ctx, other, ProjectFilters{})
	require.NoError(t, err)
	require.Empty(t, mine)

	all, err := e.projects.ListProjects(ctx, admin, ProjectFilters{})
	require.NoError(t, err)
	require.Len(t, all, 1)

	requireCode(t, e.projects.DeleteProject(ctx, other, p.ID), appErr.CodeForbidden)
}

func TestProjectAdminOperations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@x.com", "")
	admin := e.user(t, "admin@x.com", models.RoleAdmin)
	p := e.project(t, owner)

	name := "Renamed"
	_, err := e.projects.PatchProject(ctx, owner, p.ID, ProjectPatch{Name: &name})
	requireCode(t, err, appErr.CodeForbidden)

	got, err := e.projects.PatchProject(ctx, admin, p.ID, ProjectPatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, owner.UserID, got.CreatedBy)

	bad := "paused"
	_, err = e.projects.PatchProject(ctx, admin, p.ID, ProjectPatch{Status: &bad})
	requireCode(t, err, appErr.CodeInvalid)

	archived, err := e.projects.ArchiveProject(ctx, admin, p.ID)
	require.NoError(t, err)
	require.True(t, archived.Archived)
	require.Equal(t, models.ProjectArchived, archived.Status)

	yes := true
	list, err := e.projects.ListProjects(ctx, owner, ProjectFilters{Archived: &yes})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDeleteProjectCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@x.com", "")
	p := e.project(t, owner)
	folder, err := e.folders.CreateFolder(ctx, owner, p.ID, "Week 1")
	require.NoError(t, err)
	l := e.dailyLog(t, owner, p.ID, 3)
	atts, err := e.attachments.Upload(ctx, owner, l.ID, UploadInput{Files: []UploadFile{file("a.png", "image/png", "png-bytes")}})
	require.NoError(t, err)
	_, err = e.attachments.AddComment(ctx, owner, atts[0].ID, "looks good")
	require.NoError(t, err)
	require.Equal(t, 1, e.store.count())

	require.NoError(t, e.projects.DeleteProject(ctx, owner, p.ID))

	_, err = e.projects.GetProject(ctx, owner, p.ID)
	requireCode(t, err, appErr.CodeNotFound)
	_, err = e.logs.GetLog(ctx, owner, l.ID)
	requireCode(t, err, appErr.CodeNotFound)
	_, err = e.folders.RenameFolder(ctx, owner, folder.ID, "x")
	requireCode(t, err, appErr.CodeNotFound)
	_, err = e.attachments.ListComments(ctx, owner, atts[0].ID)
	requireCode(t, err, appErr.CodeNotFound)

	var comments int64
	require.NoError(t, e.db.Model(&models.Comment{}).Count(&comments).Error)
	require.Zero(t, comments)
	require.Zero(t, e.store.count(), "remote objects are purged")
	require.True(t, e.recorder.has("project.delete"))
}

func TestDeleteProjectIgnoresPurgeFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@x.com", "")
	p := e.project(t, owner)
	l := e.dailyLog(t, owner, p.ID, 3)
	_, err := e.attachments.Upload(ctx, owner, l.ID, UploadInput{Files: []UploadFile{file("a.pdf", "application/pdf", "%PDF-1.4")}})
	require.NoError(t, err)

	e.store.failDel = true
	require.NoError(t, e.projects.DeleteProject(ctx, owner, p.ID))
	_, err = e.projects.GetProject(ctx, owner, p.ID)
	requireCode(t, err, appErr.CodeNotFound)
}
