package permissions

// Static grants the permissions fixed by configuration at startup.
type Static struct {
	ExactAlarms   bool
	Notifications bool
}

func NewStatic(exactAlarms, notifications bool) *Static {
	return &Static{ExactAlarms: exactAlarms, Notifications: notifications}
}

func (p *Static) CanScheduleExactAlarms() bool {
	return p.ExactAlarms
}

func (p *Static) CanPostNotifications() bool {
	return p.Notifications
}
