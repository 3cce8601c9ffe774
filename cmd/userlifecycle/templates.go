package main

import (
	"github.com/advicehub/user-lifecycle/pkg/notification"
)

// registerNotices registers the email templates the service sends with.
func registerNotices(notifications *notification.Manager) error {
	err := notifications.RegisterNotice(notification.WorkflowErrorNotice, notification.EmailSystem,
		notification.NoticeTemplate{
			Subject: "Account deletion errors on {{.Date}}",
			Text: "The nightly account deletion run finished with {{.ErrorCount}} errors:\n\n" +
				"{{.ErrorList}}\n" +
				"Each line names the account kind, the backend and the identifier the step failed for.\n",
		})
	if err != nil {
		return err
	}
	return notifications.RegisterNotice(notification.AssignmentReportNotice, notification.EmailSystem,
		notification.NoticeTemplate{
			Subject: "Agency assignment report for {{.Consultant}}",
			Text: "Bulk agency assignment for consultant {{.Consultant}} on {{.Date}} covered " +
				"{{.AgencyCount}} agencies with {{.FailureCount}} failures.\n\n{{.FailureList}}",
		})
}
