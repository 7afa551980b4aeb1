package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(id string) Notification[string] {
	return Notification[string]{ID: id, Title: "title " + id, Visible: true}
}

func ids(list []Notification[string]) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func TestReduce_Add_prepends(t *testing.T) {
	var list []Notification[string]
	list = Reduce(list, Add(note("a")), MaxNotifications)
	list = Reduce(list, Add(note("b")), MaxNotifications)
	list = Reduce(list, Add(note("c")), MaxNotifications)

	assert.Equal(t, []string{"c", "b", "a"}, ids(list))
}

func TestReduce_Add_truncates_oldest_at_capacity(t *testing.T) {
	var list []Notification[string]
	for i := range MaxNotifications + 1 {
		list = Reduce(list, Add(note(fmt.Sprint(i))), MaxNotifications)
		assert.LessOrEqual(t, len(list), MaxNotifications)
	}

	require.Len(t, list, MaxNotifications)
	assert.Equal(t, "8", list[0].ID)
	assert.NotContains(t, ids(list), "0")
}

func TestReduce_Add_keeps_new_entry_at_capacity_one(t *testing.T) {
	list := Reduce(nil, Add(note("a")), 1)
	list = Reduce(list, Add(note("b")), 1)

	assert.Equal(t, []string{"b"}, ids(list))
}

func TestReduce_Add_replaces_duplicate_id(t *testing.T) {
	list := Reduce(nil, Add(note("a")), MaxNotifications)
	list = Reduce(list, Add(note("b")), MaxNotifications)

	replacement := note("a")
	replacement.Title = "new"
	list = Reduce(list, Add(replacement), MaxNotifications)

	assert.Equal(t, []string{"a", "b"}, ids(list))
	assert.Equal(t, "new", list[0].Title)
}

func TestReduce_does_not_mutate_input(t *testing.T) {
	list := Reduce(nil, Add(note("a")), MaxNotifications)
	list = Reduce(list, Add(note("b")), MaxNotifications)
	before := append([]Notification[string](nil), list...)

	_ = Reduce(list, Dismiss[string](""), MaxNotifications)
	_ = Reduce(list, Update("a", Patch[string]{Title: Ptr("x")}), MaxNotifications)
	_ = Reduce(list, Remove[string]("a"), MaxNotifications)

	assert.Equal(t, before, list)
}

func TestReduce_Update(t *testing.T) {
	list := Reduce(nil, Add(note("a")), MaxNotifications)
	list = Reduce(list, Add(note("b")), MaxNotifications)
	list = Reduce(list, Add(note("c")), MaxNotifications)

	list = Reduce(list, Update("b", Patch[string]{
		Title:    Ptr("x"),
		Severity: Ptr(SeverityError),
		Duration: Ptr(3 * time.Second),
	}), MaxNotifications)

	assert.Equal(t, []string{"c", "b", "a"}, ids(list))
	assert.Equal(t, "x", list[1].Title)
	assert.Equal(t, SeverityError, list[1].Severity)
	assert.Equal(t, 3*time.Second, list[1].Duration)
	assert.True(t, list[1].Visible)
	assert.Equal(t, "title a", list[2].Title)
}

func TestReduce_Update_unknown_id_is_noop(t *testing.T) {
	list := Reduce(nil, Add(note("a")), MaxNotifications)

	got := Reduce(list, Update("missing", Patch[string]{Title: Ptr("x")}), MaxNotifications)

	assert.Equal(t, list, got)
}

func TestReduce_Dismiss(t *testing.T) {
	list := Reduce(nil, Add(note("a")), MaxNotifications)
	list = Reduce(list, Add(note("b")), MaxNotifications)

	t.Run("single", func(t *testing.T) {
		got := Reduce(list, Dismiss[string]("a"), MaxNotifications)
		assert.True(t, got[0].Visible)
		assert.False(t, got[1].Visible)
		assert.Len(t, got, 2)
	})

	t.Run("all", func(t *testing.T) {
		got := Reduce(list, Dismiss[string](""), MaxNotifications)
		for _, n := range got {
			assert.False(t, n.Visible)
		}
		assert.Len(t, got, 2)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Reduce(list, Dismiss[string]("a"), MaxNotifications)
		twice := Reduce(once, Dismiss[string]("a"), MaxNotifications)
		assert.Equal(t, once, twice)
	})

	t.Run("unknown id", func(t *testing.T) {
		got := Reduce(list, Dismiss[string]("missing"), MaxNotifications)
		assert.Equal(t, list, got)
	})
}

func TestReduce_Remove(t *testing.T) {
	list := Reduce(nil, Add(note("a")), MaxNotifications)
	list = Reduce(list, Add(note("b")), MaxNotifications)

	assert.Equal(t, []string{"a"}, ids(Reduce(list, Remove[string]("b"), MaxNotifications)))
	assert.Equal(t, []string{"b", "a"}, ids(Reduce(list, Remove[string]("missing"), MaxNotifications)))
	assert.Empty(t, Reduce(list, Remove[string](""), MaxNotifications))
}

func TestDurations_For(t *testing.T) {
	d := DefaultDurations()

	tests := []struct {
		severity Severity
		want     time.Duration
	}{
		{SeveritySuccess, 8 * time.Second},
		{SeverityError, 12 * time.Second},
		{SeverityWarning, 10 * time.Second},
		{SeverityInfo, 8 * time.Second},
		{"", 8 * time.Second},
		{"bogus", 8 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.want, d.For(tt.severity))
		})
	}

	assert.Equal(t, 8*time.Second, Durations{}.For(SeverityError))
}
