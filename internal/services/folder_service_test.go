package services

import (
	"context"
	"testing"

	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFolderLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@x.com", "")
	p := e.project(t, owner)

	_, err := e.folders.CreateFolder(ctx, owner, p.ID, "   ")
	requireCode(t, err, appErr.CodeInvalid)

	f, err := e.folders.CreateFolder(ctx, owner, p.ID, " Week 1 ")
	require.NoError(t, err)
	require.Equal(t, "Week 1", f.Name)

	kept, err := e.folders.RenameFolder(ctx, owner, f.ID, "")
	require.NoError(t, err)
	require.Equal(t, "Week 1", kept.Name)

	renamed, err := e.folders.RenameFolder(ctx, owner, f.ID, "Week 2")
	require.NoError(t, err)
	require.Equal(t, "Week 2", renamed.Name)

	l, err := e.logs.CreateLog(ctx, owner, p.ID, LogInput{Date: p.StartDate, SiteArea: "Gate", ActivityType: "inspection", Summary: "walkdown", FolderID: &f.ID})
	require.NoError(t, err)

	require.NoError(t, e.folders.DeleteFolder(ctx, owner, f.ID))
	detail, err := e.logs.GetLog(ctx, owner, l.ID)
	require.NoError(t, err)
	require.Nil(t, detail.Log.FolderID)

	list, err := e.folders.ListFolders(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Empty(t, list)
	require.True(t, e.recorder.has("folder.delete"))
}

func TestFolderGuard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@x.com", "")
	other := e.user(t, "other@x.com", "")
	p := e.project(t, owner)
	f, err := e.folders.CreateFolder(ctx, owner, p.ID, "Week 1")
	require.NoError(t, err)

	_, err = e.folders.CreateFolder(ctx, other, p.ID, "Mine")
	requireCode(t, err, appErr.CodeForbidden)
	requireCode(t, e.folders.DeleteFolder(ctx, other, f.ID), appErr.CodeForbidden)
	_, err = e.folders.ListFolders(ctx, other, p.ID)
	requireCode(t, err, appErr.CodeForbidden)
}
