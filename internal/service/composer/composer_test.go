package composer_test

import (
	"errors"
	"testing"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/composer"
)

func TestSubmitRejectsBlankText(t *testing.T) {
	c := composer.New(composer.Options{})
	c.SetText("   ")

	if _, err := c.Submit(false); !errors.Is(err, composer.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if c.Text() != "   " {
		t.Fatalf("rejected submit should keep the draft, got %q", c.Text())
	}
	if c.TakeFocus() {
		t.Fatal("rejected submit should not request focus")
	}
}

func TestSubmitRejectsWhileInFlight(t *testing.T) {
	c := composer.New(composer.Options{})
	c.SetText("hello")

	if _, err := c.Submit(true); !errors.Is(err, composer.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if c.Text() != "hello" {
		t.Fatalf("busy submit should keep the draft, got %q", c.Text())
	}
}

func TestSubmitBuildsRequestAndResets(t *testing.T) {
	c := composer.New(composer.Options{QueryEnabled: true})
	c.SetText("summarize this")
	c.SetQuery("SELECT *")
	if err := c.Attach(chat.Upload{Filename: "data.json", MimeType: chat.MimeJSON, Data: []byte("{}")}); err != nil {
		t.Fatalf("Attach err: %v", err)
	}

	req, err := c.Submit(false)
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if req.Prompt != "summarize this" || req.Query != "SELECT *" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Upload == nil || req.Upload.Filename != "data.json" {
		t.Fatalf("expected upload in request, got %+v", req.Upload)
	}

	if c.Text() != "" {
		t.Fatalf("expected text cleared, got %q", c.Text())
	}
	if _, ok := c.Pending(); ok {
		t.Fatal("expected pending upload cleared")
	}
	if c.Query() != "SELECT *" {
		t.Fatalf("query should survive without ClearQueryAfterSend, got %q", c.Query())
	}
	if !c.TakeFocus() {
		t.Fatal("expected focus request after submit")
	}
	if c.TakeFocus() {
		t.Fatal("focus flag should be consumed")
	}
}

func TestSubmitClearsQueryWhenConfigured(t *testing.T) {
	c := composer.New(composer.Options{QueryEnabled: true, ClearQueryAfterSend: true})
	c.SetText("go")
	c.SetQuery("where x > 1")

	if _, err := c.Submit(false); err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if c.Query() != "" {
		t.Fatalf("expected query cleared, got %q", c.Query())
	}
}

func TestQueryIgnoredWhenDisabled(t *testing.T) {
	c := composer.New(composer.Options{})
	c.SetText("go")
	c.SetQuery("where x > 1")

	req, err := c.Submit(false)
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if req.Query != "" {
		t.Fatalf("expected no query, got %q", req.Query)
	}
}

func TestAttachFileTypes(t *testing.T) {
	c := composer.New(composer.Options{})

	if err := c.Attach(chat.Upload{Filename: "chart.png", MimeType: "image/png"}); !errors.Is(err, composer.ErrFileType) {
		t.Fatalf("expected ErrFileType for png, got %v", err)
	}
	if _, ok := c.Pending(); ok {
		t.Fatal("rejected file must not become pending")
	}

	if err := c.Attach(chat.Upload{Filename: "data.csv", MimeType: chat.MimeCSV}); err != nil {
		t.Fatalf("text/csv should be accepted: %v", err)
	}
	if err := c.Attach(chat.Upload{Filename: "report.csv", MimeType: chat.MimeExcel}); err != nil {
		t.Fatalf(".csv with excel mime should be accepted: %v", err)
	}
	pending, ok := c.Pending()
	if !ok || pending.Filename != "report.csv" || !pending.IsCSV() {
		t.Fatalf("unexpected pending upload: %+v", pending)
	}

	if err := c.Attach(chat.Upload{Filename: "book.xls", MimeType: chat.MimeExcel}); !errors.Is(err, composer.ErrFileType) {
		t.Fatalf("expected ErrFileType for xls, got %v", err)
	}
	if _, ok := c.Pending(); ok {
		t.Fatal("rejected file must leave no pending upload")
	}
}

func TestRemoveAttachment(t *testing.T) {
	c := composer.New(composer.Options{})
	if err := c.Attach(chat.Upload{Filename: "a.txt", MimeType: chat.MimePlain}); err != nil {
		t.Fatalf("Attach err: %v", err)
	}

	c.RemoveAttachment()

	if _, ok := c.Pending(); ok {
		t.Fatal("expected no pending upload after removal")
	}
}
