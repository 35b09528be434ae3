package email

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var mdRenderer = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// AnswerNotice is the content of an "your question was answered" email.
type AnswerNotice struct {
	MemberName  string
	MemberEmail string
	Question    string
	Answer      string // Markdown
	AnsweredBy  string
	PageURL     string
	SiteURL     string
}

// RenderAnswerNotice builds the notification email. Answers are authored in Markdown.
// PRE: n.MemberEmail and n.Answer non-empty
func RenderAnswerNotice(n AnswerNotice) (Message, error) {
	var answerHTML bytes.Buffer
	if err := mdRenderer.Convert([]byte(n.Answer), &answerHTML); err != nil {
		return Message{}, fmt.Errorf("render answer markdown: %w", err)
	}

	greeting := "Hi"
	if name := strings.TrimSpace(n.MemberName); name != "" {
		greeting = "Hi " + name
	}
	link := lessonLink(n.SiteURL, n.PageURL)

	var h strings.Builder
	fmt.Fprintf(&h, "<p>%s,</p>\n", html.EscapeString(greeting))
	h.WriteString("<p>Your question has been answered.</p>\n")
	fmt.Fprintf(&h, "<blockquote>%s</blockquote>\n", html.EscapeString(n.Question))
	h.WriteString(answerHTML.String())
	if n.AnsweredBy != "" {
		fmt.Fprintf(&h, "<p>&mdash; %s</p>\n", html.EscapeString(n.AnsweredBy))
	}
	if link != "" {
		fmt.Fprintf(&h, "<p><a href=\"%s\">Back to the lesson</a></p>\n", html.EscapeString(link))
	}

	var t strings.Builder
	fmt.Fprintf(&t, "%s,\n\nYour question has been answered.\n\n> %s\n\n%s\n", greeting, n.Question, n.Answer)
	if n.AnsweredBy != "" {
		fmt.Fprintf(&t, "\n- %s\n", n.AnsweredBy)
	}
	if link != "" {
		fmt.Fprintf(&t, "\nBack to the lesson: %s\n", link)
	}

	return Message{
		To:      n.MemberEmail,
		Subject: "Your question has been answered",
		HTML:    h.String(),
		Text:    t.String(),
	}, nil
}

func lessonLink(site, page string) string {
	page = strings.TrimSpace(page)
	if page == "" || strings.HasPrefix(page, "http://") || strings.HasPrefix(page, "https://") {
		return page
	}
	if site == "" {
		return ""
	}
	return strings.TrimRight(site, "/") + "/" + strings.TrimLeft(page, "/")
}
