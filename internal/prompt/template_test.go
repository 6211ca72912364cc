package prompt

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

func TestParseRejectsUnknownSlot(t *testing.T) {
	_, err := Parse("병원 목록: ((HOSPITAL_LIST))\n기타: ((UNKNOWN_SLOT))")
	if err == nil {
		t.Fatalf("expected error for unknown slot token")
	}
	if !strings.Contains(err.Error(), "((UNKNOWN_SLOT))") {
		t.Fatalf("expected error to name the unknown slot, got %v", err)
	}
}

func TestParseRejectsEmptyTemplate(t *testing.T) {
	if _, err := Parse("   \n "); err == nil {
		t.Fatalf("expected error for empty template")
	}
}

func TestBuildSubstitutesAllSlots(t *testing.T) {
	tpl, err := Parse("병원: ((HOSPITAL_LIST))\n사진: ((SUBMITTED_PHOTOS))\n대화: ((CONVERSATION_HISTORY))")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	history := []domain.ConversationTurn{{Role: domain.RoleUser, Content: "안녕하세요"}}
	out, err := tpl.Build("강남 A의원", "정면 사진 1장", history)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.Contains(out, "((") {
		t.Fatalf("expected no literal slot tokens, got %q", out)
	}
	for _, want := range []string{"강남 A의원", "정면 사진 1장", "user: 안녕하세요"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestBuildFillsNoneSentinels(t *testing.T) {
	tpl, err := Parse("((HOSPITAL_LIST)) | ((SUBMITTED_PHOTOS)) | ((CONVERSATION_HISTORY))")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out, err := tpl.Build("", "", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{NoDirectoryNotice, NoPhotosNotice, NoHistoryNotice} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected sentinel %q in output, got %q", want, out)
		}
	}
	if strings.Contains(out, "((") {
		t.Fatalf("expected no literal slot tokens, got %q", out)
	}
}

func TestLoadFallsBackToDefaultWhenFileMissing(t *testing.T) {
	tpl, err := Load(filepath.Join(t.TempDir(), "absent.txt"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	out, err := tpl.Build("목록", "", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "목록") {
		t.Fatalf("expected default template to carry the directory slot")
	}
	if !strings.Contains(out, "consultation_stage") {
		t.Fatalf("expected default template to instruct the result schema")
	}
}

func TestSimplePromptCarriesQuery(t *testing.T) {
	out := Simple("이마 보톡스 비용이 궁금해요")
	if !strings.Contains(out, "사용자 질문: 이마 보톡스 비용이 궁금해요") {
		t.Fatalf("expected query in simple prompt, got %q", out)
	}
	if !strings.Contains(out, "20년차") {
		t.Fatalf("expected persona line in simple prompt, got %q", out)
	}
}

func TestDefaultTemplateParses(t *testing.T) {
	if _, err := Parse(DefaultTemplate); err != nil {
		t.Fatalf("default template must parse: %v", err)
	}
}

func TestSerializeHistoryPreservesOrder(t *testing.T) {
	turns := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "필러 맞고 싶어요"},
		{Role: domain.RoleModel, Content: "어느 부위를 생각하고 계신가요?"},
		{Role: domain.RoleUser, Content: "팔자주름이요"},
	}

	got := SerializeHistory(turns)
	want := "user: 필러 맞고 싶어요\nmodel: 어느 부위를 생각하고 계신가요?\nuser: 팔자주름이요"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if SerializeHistory(nil) != "" {
		t.Fatalf("expected empty serialization for no turns")
	}
}
