package reminder

import "fmt"

// Collection is the ordered in-memory list of reminders.
// It is not safe for concurrent use; access goes through a unit of work.
type Collection struct {
	items []Reminder
}

func NewCollection(reminders ...Reminder) *Collection {
	c := &Collection{}
	c.Reset(reminders)
	return c
}

func (c *Collection) Len() int {
	return len(c.items)
}

// All returns a copy of the reminders in their display order.
func (c *Collection) All() []Reminder {
	items := make([]Reminder, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Collection) Reset(reminders []Reminder) {
	c.items = make([]Reminder, len(reminders))
	copy(c.items, reminders)
}

func (c *Collection) Get(index int) (Reminder, error) {
	if err := c.checkIndex(index); err != nil {
		return Reminder{}, err
	}
	return c.items[index], nil
}

func (c *Collection) IndexOf(id ID) (int, bool) {
	for ix, r := range c.items {
		if r.ID == id {
			return ix, true
		}
	}
	return -1, false
}

func (c *Collection) Append(r Reminder) (int, error) {
	return c.Insert(len(c.items), r)
}

// Insert puts r at index, shifting the following reminders. Index may equal Len.
func (c *Collection) Insert(index int, r Reminder) (int, error) {
	if index < 0 || index > len(c.items) {
		return -1, fmt.Errorf("%w: %d", ErrReminderIndexOutOfRange, index)
	}
	if err := r.Validate(); err != nil {
		return -1, err
	}
	if _, exists := c.IndexOf(r.ID); exists {
		return -1, fmt.Errorf("%w: %d", ErrReminderIDConflict, r.ID)
	}
	c.items = append(c.items, Reminder{})
	copy(c.items[index+1:], c.items[index:])
	c.items[index] = r
	return index, nil
}

func (c *Collection) RemoveAt(index int) (Reminder, error) {
	if err := c.checkIndex(index); err != nil {
		return Reminder{}, err
	}
	removed := c.items[index]
	c.items = append(c.items[:index], c.items[index+1:]...)
	return removed, nil
}

func (c *Collection) MaxID() ID {
	var max ID
	for _, r := range c.items {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}

func (c *Collection) checkIndex(index int) error {
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("%w: %d (size %d)", ErrReminderIndexOutOfRange, index, len(c.items))
	}
	return nil
}
