package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseLogQuery(t *testing.T) {
	folder := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/?from=2025-02-01&endDate=2025-02-10T12:00:00Z&folder="+folder.String()+"&page=2&limit=5&activityType=rebar", nil)
	q, err := parseLogQuery(r)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), *q.From)
	require.Equal(t, time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC), *q.To)
	require.Equal(t, folder, *q.FolderID)
	require.Equal(t, 2, q.Page)
	require.Equal(t, 5, q.Limit)

	for _, bad := range []string{"/?page=x", "/?activityType=welding", "/?folder=123", "/?from=yesterday"} {
		_, err := parseLogQuery(httptest.NewRequest(http.MethodGet, bad, nil))
		require.True(t, appErr.IsCode(err, appErr.CodeInvalid), bad)
	}
}

func TestParseReportQuery(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/?startDate=2025-02-01&logIds="+a.String()+",%20"+b.String(), nil)
	q, err := parseReportQuery(r, []string{"startDate", "from"}, []string{"endDate", "to"})
	require.NoError(t, err)
	require.NotNil(t, q.From)
	require.Nil(t, q.To)
	require.Equal(t, []uuid.UUID{a, b}, q.LogIDs)

	_, err = parseReportQuery(httptest.NewRequest(http.MethodGet, "/?logIds=1,2", nil), []string{"from"}, []string{"to"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}
