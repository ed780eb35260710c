package git

import (
	"strings"
)

// Commit types used in history messages.
const (
	CommitTypeChore = "chore"
	CommitTypeData  = "data"
)

// Footer marks commits written by the store.
const Footer = "Recorded-by: notebox"

// FormatMessage builds a Conventional Commit message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Recorded-by: notebox
func FormatMessage(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)
	if scope != "" {
		sb.WriteString("(" + scope + ")")
	}
	sb.WriteString(": ")
	sb.WriteString(subject)

	if body = strings.TrimSpace(body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)
	return sb.String()
}

// Subject returns the first line of a commit message.
func Subject(msg string) string {
	first, _, _ := strings.Cut(msg, "\n")
	return first
}
