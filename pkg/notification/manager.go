package notification

import (
	"fmt"
)

// Manager holds the registered notifiers and the notice templates per system.
type Manager struct {
	notifiers map[System]Notifier
	registry  map[NoticeType]map[System]NoticeTemplate
}

// NewManager creates an empty notification manager.
func NewManager() *Manager {
	return &Manager{
		notifiers: make(map[System]Notifier),
		registry:  make(map[NoticeType]map[System]NoticeTemplate),
	}
}

// RegisterNotifier registers a notifier for a delivery system, replacing any
// previously registered one.
func (m *Manager) RegisterNotifier(system System, notifier Notifier) {
	m.notifiers[system] = notifier
}

// RegisterNotice adds a notice template for a system to the registry.
func (m *Manager) RegisterNotice(noticeType NoticeType, system System, template NoticeTemplate) error {
	if noticeType == "" || system == "" {
		return fmt.Errorf("invalid input: notice type and system cannot be empty")
	}
	if template.Text == "" && template.Html == "" {
		return fmt.Errorf("invalid template: either Text or Html must be set")
	}
	if _, exists := m.registry[noticeType]; !exists {
		m.registry[noticeType] = make(map[System]NoticeTemplate)
	}
	m.registry[noticeType][system] = template
	return nil
}

// Send renders and delivers a notice over the given system.
func (m *Manager) Send(noticeType NoticeType, system System, data Data) error {
	systemTemplates, exists := m.registry[noticeType]
	if !exists {
		return fmt.Errorf("no templates registered for notice type: %s", noticeType)
	}
	template, exists := systemTemplates[system]
	if !exists {
		return fmt.Errorf("no template registered for system %s under notice type %s", system, noticeType)
	}
	notifier, exists := m.notifiers[system]
	if !exists {
		return fmt.Errorf("no notifier registered for system: %s", system)
	}
	return notifier.Send(noticeType, data, template)
}
