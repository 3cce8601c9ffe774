package notification

// MockNotifier records sent notices for tests.
type MockNotifier struct {
	SentNotices []Data
	Types       []NoticeType
}

func (m *MockNotifier) Send(noticeType NoticeType, data Data, template NoticeTemplate) error {
	m.SentNotices = append(m.SentNotices, data)
	m.Types = append(m.Types, noticeType)
	return nil
}
