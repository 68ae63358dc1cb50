package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdList_RendersTableAndStats(t *testing.T) {
	a, _, _, out := newTestApp(sampleRemote()...)
	ctx := context.Background()
	require.NoError(t, a.Reload(ctx))

	require.NoError(t, cmdList(ctx, a, nil))
	text := out.String()
	assert.Contains(t, text, "ID")
	assert.Contains(t, text, "01/03/2025 09:30")
	assert.Contains(t, text, "10.00")
	assert.Contains(t, text, "Total:")
	assert.Contains(t, text, "30.00")
	assert.Contains(t, text, "Most recent:")
	assert.Contains(t, text, "#2 20.00 Rent")
}

func TestCmdList_States(t *testing.T) {
	a, fg, _, out := newTestApp()
	ctx := context.Background()

	require.NoError(t, cmdList(ctx, a, nil))
	assert.Contains(t, out.String(), "Loading transactions")

	require.NoError(t, a.Reload(ctx))
	out.Reset()
	require.NoError(t, cmdList(ctx, a, nil))
	assert.Contains(t, out.String(), "No transactions yet")

	fg.loadErr = assert.AnError
	_ = a.Reload(ctx)
	out.Reset()
	require.NoError(t, cmdList(ctx, a, nil))
	assert.Contains(t, out.String(), "Could not load transactions")
}

func TestCmdFilter_NoMatches(t *testing.T) {
	a, _, _, out := newTestApp(sampleRemote()...)
	ctx := context.Background()
	require.NoError(t, a.Reload(ctx))

	require.NoError(t, cmdFilter(ctx, a, []string{"category=Travel"}))
	assert.Contains(t, out.String(), "No transactions match the current filter (category=Travel)")

	out.Reset()
	require.NoError(t, cmdFilter(ctx, a, nil))
	assert.Equal(t, "Filter: category=Travel\n", out.String())

	assert.ErrorIs(t, cmdFilter(ctx, a, []string{"category"}), errUsage)
}

func TestCmdAddAndEditArguments(t *testing.T) {
	a, fg, _, out := newTestApp(sampleRemote()...)
	ctx := context.Background()
	require.NoError(t, a.Reload(ctx))

	require.NoError(t, cmdAdd(ctx, a, []string{"4.20", "Fast", "food"}))
	assert.Contains(t, fg.calls, "create 4.2 Fast food")

	require.NoError(t, cmdEdit(ctx, a, []string{"1", "11"}))
	assert.Contains(t, fg.calls, "update 1 11 ")

	assert.ErrorIs(t, cmdAdd(ctx, a, nil), errUsage)
	assert.Contains(t, out.String(), "Usage: add <amount> [category]")
	assert.Error(t, cmdEdit(ctx, a, []string{"x", "1"}))
}

func TestCmdShow(t *testing.T) {
	a, fg, notes, out := newTestApp(sampleRemote()...)
	ctx := context.Background()

	require.NoError(t, cmdShow(ctx, a, []string{"2"}))
	assert.Contains(t, out.String(), "Category:  Rent")
	assert.Contains(t, fg.calls, "fetch 2")

	require.Error(t, cmdShow(ctx, a, []string{"9"}))
	assert.Equal(t, "Could not fetch transaction #9: server returned 404: transaction not found", lastNote(t, notes).Message)
}

func TestCmdDeletePrompt(t *testing.T) {
	a, _, _, out := newTestApp(sampleRemote()...)
	ctx := context.Background()
	require.NoError(t, a.Reload(ctx))

	require.NoError(t, cmdDelete(ctx, a, []string{"3"}))
	assert.Contains(t, out.String(), "Delete transaction #3 (-, Food)? Type confirm or cancel.")

	out.Reset()
	require.NoError(t, cmdCancel(ctx, a, nil))
	assert.Equal(t, "Delete cancelled.\n", out.String())
}

func TestCmdHelpListsEveryCommand(t *testing.T) {
	a, _, _, out := newTestApp()
	require.NoError(t, cmdHelp(context.Background(), a, nil))
	for _, c := range commandTable() {
		assert.Contains(t, out.String(), c.usage)
	}
	table := dispatchTable()
	assert.NotContains(t, table, "exit")
	assert.Contains(t, table, "confirm")
}
