package workflow

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jinzhu/copier"

	"github.com/advicehub/user-lifecycle/pkg/deletion"
	"github.com/advicehub/user-lifecycle/pkg/notification"
)

// reportRow is the flat view of a workflow error rendered into the report
// mail. Field names mirror deletion.WorkflowError so copier maps them.
type reportRow struct {
	Source     deletion.SourceType
	Target     deletion.TargetType
	Identifier string
	Reason     string
	Timestamp  time.Time
}

// ErrorReporter mails the aggregated errors of a deletion sweep to the
// operations mailbox.
type ErrorReporter struct {
	notifications *notification.Manager
	recipient     string
}

// NewErrorReporter creates a reporter sending over the given manager.
func NewErrorReporter(notifications *notification.Manager, recipient string) *ErrorReporter {
	return &ErrorReporter{
		notifications: notifications,
		recipient:     recipient,
	}
}

// Report sends one mail listing every workflow error. Delivery failure is
// logged and swallowed; the report must never fail the sweep itself.
func (r *ErrorReporter) Report(workflowErrors []deletion.WorkflowError) {
	if len(workflowErrors) == 0 {
		return
	}

	var rows []reportRow
	if err := copier.Copy(&rows, &workflowErrors); err != nil {
		slog.Error("Failed to map workflow errors for the report mail", "err", err)
		return
	}

	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s | source: %s | target: %s | identifier: %s | %s\n",
			row.Timestamp.Format(time.RFC3339), row.Source, row.Target, row.Identifier, row.Reason)
	}

	data := notification.Data{
		To: r.recipient,
		Data: map[string]string{
			"ErrorCount": fmt.Sprintf("%d", len(rows)),
			"ErrorList":  b.String(),
			"Date":       time.Now().UTC().Format("2006-01-02"),
		},
	}
	if err := r.notifications.Send(notification.WorkflowErrorNotice, notification.EmailSystem, data); err != nil {
		slog.Error("Failed to send the deletion workflow error report", "err", err)
	}
}
