package notification

// System identifies a delivery channel.
type System string

const (
	EmailSystem System = "email"
)

// NoticeType identifies a notice the service can send.
type NoticeType string

const (
	// WorkflowErrorNotice reports aggregated deletion workflow errors to the
	// operations mailbox after a sweep.
	WorkflowErrorNotice NoticeType = "deletion_workflow_errors"
	// AssignmentReportNotice reports the outcome of a background agency
	// assignment run.
	AssignmentReportNotice NoticeType = "agency_assignment_report"
)

// NoticeTemplate holds the subject and body templates of a notice. Text and
// Html are Go template strings; at least one must be set.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Data is the payload rendered into a notice template.
type Data struct {
	To   string
	Data map[string]string
}

// Notifier delivers a rendered notice over one system.
type Notifier interface {
	Send(noticeType NoticeType, data Data, template NoticeTemplate) error
}
