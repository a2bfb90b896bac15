package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	// Empty values fall through to defaults, isolating the test from the
	// ambient environment.
	for _, key := range []string{
		"H2A_PORT", "H2A_LOG_LEVEL", "OPENAI_CHAT_MODEL", "OPENAI_EMBEDDING_MODEL",
		"EMBEDDING_BACKEND", "MATCH_SOLUTION_K", "MATCH_PROJECT_K",
		"EXTRACT_REPAIR_ATTEMPTS", "ANSWER_STYLE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/h2a")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Port != 8080 {
		t.Errorf("Port = %d, want 8080", c.Port)
	}
	if c.ChatModel != "gpt-4.1-mini" {
		t.Errorf("ChatModel = %q", c.ChatModel)
	}
	if c.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q", c.EmbeddingModel)
	}
	if c.SolutionK != 5 || c.ProjectK != 3 {
		t.Errorf("SolutionK = %d, ProjectK = %d, want 5 and 3", c.SolutionK, c.ProjectK)
	}
	if c.RepairAttempts != 2 {
		t.Errorf("RepairAttempts = %d, want 2", c.RepairAttempts)
	}
	if c.AnswerStyle != "empathetic" {
		t.Errorf("AnswerStyle = %q", c.AnswerStyle)
	}
	if c.EmbeddingBackend != "openai" {
		t.Errorf("EmbeddingBackend = %q", c.EmbeddingBackend)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load must fail without DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/h2a")
	t.Setenv("H2A_PORT", "9090")
	t.Setenv("MATCH_SOLUTION_K", "7")
	t.Setenv("ANSWER_STYLE", "formal")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != 9090 {
		t.Errorf("Port = %d, want 9090", c.Port)
	}
	if c.SolutionK != 7 {
		t.Errorf("SolutionK = %d, want 7", c.SolutionK)
	}
	if c.AnswerStyle != "formal" {
		t.Errorf("AnswerStyle = %q, want formal", c.AnswerStyle)
	}
}

func TestEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("MATCH_PROJECT_K", "three")
	t.Setenv("DATABASE_URL", "postgres://localhost/h2a")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ProjectK != 3 {
		t.Errorf("ProjectK = %d, want default 3 on unparseable value", c.ProjectK)
	}
}
