package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/core/notify/notifytest"
	"github.com/hay-kot/toastq/pkg/tuitest"
)

func newTestModel(t *testing.T) (Model, *notify.Center[string], *notifytest.Clock) {
	t.Helper()
	clock := notifytest.NewClock()
	center := notify.New[string](notify.WithClock(clock))
	m := New(context.Background(), center, Options{ToastWidth: 40})
	t.Cleanup(m.toastController.Close)
	return m, center, clock
}

// send runs msg through Update and, when the model asks to listen, feeds the
// resulting snapshot back in.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	result, _ := m.Update(msg)
	m = result.(Model)

	select {
	case list := <-m.toastController.updates:
		result, cmd := m.Update(snapshotMsg{list: list})
		require.NotNil(t, cmd, "snapshot should re-arm the listener")
		m = result.(Model)
	default:
	}
	return m
}

func TestModel_keys_push_each_severity(t *testing.T) {
	m, center, _ := newTestModel(t)

	for _, r := range []rune{'s', 'e', 'w', 'i'} {
		m = send(t, m, tuitest.KeyPress(r))
	}

	list := center.Snapshot()
	require.Len(t, list, 4)
	assert.Equal(t, notify.SeverityInfo, list[0].Severity)
	assert.Equal(t, notify.SeverityWarning, list[1].Severity)
	assert.Equal(t, notify.SeverityError, list[2].Severity)
	assert.Equal(t, notify.SeveritySuccess, list[3].Severity)
	assert.Len(t, m.toastController.Toasts(), 4)
}

func TestModel_dismiss_and_expire(t *testing.T) {
	m, center, clock := newTestModel(t)

	m = send(t, m, tuitest.KeyPress('i'))
	m = send(t, m, tuitest.KeyPress('d'))

	list := center.Snapshot()
	require.Len(t, list, 1)
	assert.False(t, list[0].Visible)

	clock.Advance(notify.DefaultRemoveDelay)
	m = send(t, m, tuitest.WindowSize(80, 24))
	assert.False(t, m.toastController.HasToasts())
}

func TestModel_auto_dismiss_follows_severity_duration(t *testing.T) {
	m, center, clock := newTestModel(t)

	_ = send(t, m, tuitest.KeyPress('e'))
	clock.Advance(notify.DefaultDurations()[notify.SeverityError] - 1)
	assert.True(t, center.Snapshot()[0].Visible)

	clock.Advance(1)
	assert.False(t, center.Snapshot()[0].Visible)
}

func TestModel_dismiss_all_and_clear(t *testing.T) {
	m, center, _ := newTestModel(t)

	m = send(t, m, tuitest.KeyPress('s'))
	m = send(t, m, tuitest.KeyPress('e'))
	m = send(t, m, tuitest.KeyPress('D'))
	for _, n := range center.Snapshot() {
		assert.False(t, n.Visible)
	}

	m = send(t, m, tuitest.KeyPress('x'))
	assert.Zero(t, center.Len())
	assert.False(t, m.toastController.HasToasts())
}

func TestModel_update_newest(t *testing.T) {
	m, center, _ := newTestModel(t)

	m = send(t, m, tuitest.KeyPress('e'))
	_ = send(t, m, tuitest.KeyPress('u'))

	assert.Equal(t, notify.SeveritySuccess, center.Snapshot()[0].Severity)
}

func TestModel_quit(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(tuitest.KeyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	select {
	case <-m.toastController.watcher.Done():
	default:
		t.Fatal("watcher should be closed on quit")
	}
}

func TestModel_View(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = send(t, m, tuitest.WindowSize(100, 30))
	m = send(t, m, tuitest.KeyPress('w'))

	out := tuitest.StripANSI(m.View())
	assert.Contains(t, out, "toastq")
	assert.Contains(t, out, "1 visible, 1 total, capacity 8")
	assert.Contains(t, out, "Disk almost full")
	assert.Contains(t, out, "dismiss all")
}
