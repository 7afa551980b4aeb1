package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

// Severity icons
var (
	IconSuccess = "" // nf-fa-check_circle
	IconError   = "" // nf-fa-times_circle
	IconWarning = "" // nf-fa-warning
	IconInfo    = "" // nf-fa-info_circle
)
