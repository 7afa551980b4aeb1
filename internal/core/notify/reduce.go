package notify

import "slices"

// ActionType identifies the kind of state transition an Action performs.
type ActionType int

const (
	ActionAdd ActionType = iota
	ActionUpdate
	ActionDismiss
	ActionRemove
)

func (t ActionType) String() string {
	switch t {
	case ActionAdd:
		return "add"
	case ActionUpdate:
		return "update"
	case ActionDismiss:
		return "dismiss"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Action is a state transition applied by Reduce. An empty ID on Dismiss or
// Remove targets every notification.
type Action[T any] struct {
	Type         ActionType
	ID           string
	Notification Notification[T]
	Patch        Patch[T]
}

// Add returns an action that inserts n at the front of the list.
func Add[T any](n Notification[T]) Action[T] {
	return Action[T]{Type: ActionAdd, ID: n.ID, Notification: n}
}

// Update returns an action that merges p into the notification with id.
func Update[T any](id string, p Patch[T]) Action[T] {
	return Action[T]{Type: ActionUpdate, ID: id, Patch: p}
}

// Dismiss returns an action that hides the notification with id, or every
// notification when id is empty.
func Dismiss[T any](id string) Action[T] {
	return Action[T]{Type: ActionDismiss, ID: id}
}

// Remove returns an action that deletes the notification with id, or every
// notification when id is empty.
func Remove[T any](id string) Action[T] {
	return Action[T]{Type: ActionRemove, ID: id}
}

// Reduce applies a to list and returns the resulting list. The input slice
// is never modified. capacity values below 1 are treated as 1.
func Reduce[T any](list []Notification[T], a Action[T], capacity int) []Notification[T] {
	capacity = max(capacity, 1)

	switch a.Type {
	case ActionAdd:
		next := make([]Notification[T], 0, min(len(list)+1, capacity))
		next = append(next, a.Notification)
		for _, n := range list {
			if len(next) == capacity {
				break
			}
			if n.ID == a.Notification.ID {
				continue
			}
			next = append(next, n)
		}
		return next

	case ActionUpdate:
		i := slices.IndexFunc(list, func(n Notification[T]) bool { return n.ID == a.ID })
		if i < 0 {
			return list
		}
		next := slices.Clone(list)
		next[i] = a.Patch.apply(next[i])
		return next

	case ActionDismiss:
		next := slices.Clone(list)
		for i := range next {
			if a.ID == "" || next[i].ID == a.ID {
				next[i].Visible = false
			}
		}
		return next

	case ActionRemove:
		if a.ID == "" {
			return []Notification[T]{}
		}
		return slices.DeleteFunc(slices.Clone(list), func(n Notification[T]) bool {
			return n.ID == a.ID
		})
	}

	return list
}
