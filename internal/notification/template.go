package notification

import "fmt"

// Template carries the per-channel content for one lifecycle event,
// parameterized by the report's tracking id.
type Template struct {
	EmailSubject string
	EmailHTML    string
	SMS          string
}

func ReportCreated(trackingID string) Template {
	return Template{
		EmailSubject: "Trash Report Submitted",
		EmailHTML:    fmt.Sprintf("<p>Your report <b>%s</b> has been received.</p>", trackingID),
		SMS:          fmt.Sprintf("Your Trash Beta report (%s) has been received.", trackingID),
	}
}

func ReportAssigned(trackingID string) Template {
	return Template{
		EmailSubject: "New Task Assigned",
		EmailHTML:    fmt.Sprintf("<p>You have been assigned report <b>%s</b>.</p>", trackingID),
		SMS:          fmt.Sprintf("New Trash Beta task assigned: %s", trackingID),
	}
}

func ReportCompleted(trackingID string) Template {
	return Template{
		EmailSubject: "Trash Report Completed",
		EmailHTML:    fmt.Sprintf("<p>Your report <b>%s</b> has been completed.</p>", trackingID),
		SMS:          fmt.Sprintf("Your Trash Beta report (%s) has been completed.", trackingID),
	}
}
