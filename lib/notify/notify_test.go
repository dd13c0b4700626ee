package notify

import (
	"context"
	"encoding/json"
	"errors"
	"gradewatch/lib/grades"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/require"
)

func message() Message {
	added := grades.Grade{
		CourseCode: "PE101", CourseName: "体育", Credits: 1,
		Scheme: grades.SchemePassFail, RawGradeLabel: "通过",
	}
	previous := grades.Grade{
		CourseCode: "MATH101", CourseName: "高等数学", Credits: 5,
		Scheme: grades.SchemeLetter, RawGradeLabel: "B+", GPA: grades.Float(3.3),
	}
	current := previous
	current.RawGradeLabel = "A-"
	current.GPA = grades.Float(3.7)

	return Message{
		Identity:     "2210000",
		SemesterID:   "4324",
		SemesterName: "2024-2025 第2学期",
		Changes: grades.ChangeSet{
			Added:   []grades.Grade{added},
			Updated: []grades.Update{{Previous: previous, Current: current}},
		},
		Summary: grades.Summarize([]grades.Grade{added, current}),
	}
}

func TestTitle(t *testing.T) {
	msg := message()
	require.Equal(t, "🎓 成绩更新通知 - 新增1门，更新1门", msg.Title())

	msg.Changes.Updated = nil
	require.Equal(t, "🎓 新增成绩通知 - 1门课程", msg.Title())

	msg = message()
	msg.Changes.Added = nil
	require.Equal(t, "🎓 成绩更新通知 - 1门课程", msg.Title())
}

func TestRender(t *testing.T) {
	text := RenderText(message())
	require.Contains(t, text, "2024-2025 第2学期 (2210000)")
	require.Contains(t, text, "体育")
	require.Contains(t, text, "B+ → A-")
	require.Contains(t, text, "3.3 → 3.7")
	require.Contains(t, text, "加权绩点3.70")

	markdown := RenderMarkdown(message())
	require.True(t, strings.HasPrefix(markdown, "### "))
	require.Contains(t, markdown, "| 新增 | 体育 |")
}

func TestPushPlus(t *testing.T) {
	var received pushPlusRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		if received.Token != "good-token" {
			w.Write([]byte(`{"code":903,"msg":"无效的用户token"}`))
			return
		}
		w.Write([]byte(`{"code":200,"msg":"请求成功","data":"abc"}`))
	}))
	defer server.Close()

	msg := message()
	sink := NewPushPlus(PushPlusOptions{Token: "good-token", Endpoint: server.URL})
	require.NoError(t, sink.Notify(context.Background(), msg))
	require.Equal(t, msg.Title(), received.Title)
	require.Equal(t, "markdown", received.Template)
	require.Contains(t, received.Content, "高等数学")

	sink = NewPushPlus(PushPlusOptions{Token: "bad-token", Endpoint: server.URL})
	err := sink.Notify(context.Background(), msg)
	var notifyErr *Error
	require.True(t, errors.As(err, &notifyErr))
	require.Equal(t, "pushplus", notifyErr.Sink)
	require.Contains(t, err.Error(), "903")

	sink = NewPushPlus(PushPlusOptions{Endpoint: server.URL})
	require.Error(t, sink.Notify(context.Background(), msg))
}

func TestEmail(t *testing.T) {
	sink := NewEmail(SmtpConfig{
		Server:       "smtp.example.com",
		Port:         587,
		EmailAddress: "bot@example.com",
		Password:     "hunter2",
	}, []string{"student@example.com"})

	var attempts []smtp.Auth
	var sent *email.Email
	sink.send = func(mail *email.Email, addr string, auth smtp.Auth) error {
		require.Equal(t, "smtp.example.com:587", addr)
		attempts = append(attempts, auth)
		if auth != nil {
			return errors.New("smtp: server doesn't support AUTH")
		}
		sent = mail
		return nil
	}

	err := sink.Notify(context.Background(), message())
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.Nil(t, attempts[1])
	require.Equal(t, []string{"student@example.com"}, sent.To)
	require.Equal(t, message().Title(), sent.Subject)
	require.Contains(t, string(sent.Text), "体育")

	sink.send = func(*email.Email, string, smtp.Auth) error {
		return errors.New("connection refused")
	}
	err = sink.Notify(context.Background(), message())
	var notifyErr *Error
	require.True(t, errors.As(err, &notifyErr))
	require.Equal(t, "email", notifyErr.Sink)
}

type recorder struct {
	messages []Message
	err      error
}

func (r *recorder) Notify(_ context.Context, msg Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func TestMulti(t *testing.T) {
	failing := &recorder{err: &Error{Sink: "test", Err: errors.New("down")}}
	working := &recorder{}

	err := Multi{failing, working, Log{}}.Notify(context.Background(), message())
	require.Error(t, err)
	require.Len(t, failing.messages, 1)
	require.Len(t, working.messages, 1)

	require.NoError(t, Multi{working}.Notify(context.Background(), message()))
}
