package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func logFiles(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, ".degree", "logs"))
	if err != nil {
		return nil
	}
	out := make(map[string]string)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, ".degree", "logs", e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		out[e.Name()] = string(data)
	}
	return out
}

func resetLogging(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		_ = Configure("", Settings{})
	})
}

// TestAllCategoriesLog checks every category creates its file in debug mode.
func TestAllCategoriesLog(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	if err := Configure(tempDir, Settings{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Failed to configure logging: %v", err)
	}

	for _, cat := range Categories() {
		Get(cat).Info("hello from %s", cat)
	}
	CloseAll()

	files := logFiles(t, tempDir)
	date := time.Now().Format("2006-01-02")
	for _, cat := range Categories() {
		name := date + "_" + string(cat) + ".log"
		content, ok := files[name]
		if !ok {
			t.Errorf("missing log file %s", name)
			continue
		}
		if !strings.Contains(content, "[INFO] hello from "+string(cat)) {
			t.Errorf("%s: unexpected content %q", name, content)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	err := Configure(tempDir, Settings{Categories: map[string]bool{"boot": true}})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	for _, cat := range Categories() {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be disabled when debug_mode=false", cat)
		}
	}

	Boot("not logged")
	Get(CategoryEngine).Error("not logged")
	CloseAll()

	if _, err := os.Stat(filepath.Join(tempDir, ".degree", "logs")); !os.IsNotExist(err) {
		t.Errorf("logs directory should not exist in production mode, stat err = %v", err)
	}
}

func TestConfigureWithoutWorkspaceWritesNothing(t *testing.T) {
	resetLogging(t)
	if err := Configure("", Settings{DebugMode: true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if Get(CategoryBoot).logger != nil {
		t.Error("no workspace should yield no-op loggers")
	}
	API("dropped")
	WithRequestID(CategoryAPI, "r-0").Info("dropped")
}

func TestCategoryToggle(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	err := Configure(tempDir, Settings{
		DebugMode:  true,
		Level:      "debug",
		Categories: map[string]bool{"engine": true, "store": false},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if !IsCategoryEnabled(CategoryEngine) {
		t.Error("engine should be enabled")
	}
	if IsCategoryEnabled(CategoryStore) {
		t.Error("store should be disabled")
	}
	if !IsCategoryEnabled(CategoryImport) {
		t.Error("unlisted categories default to enabled")
	}

	EngineDebug("reconciled")
	StoreDebug("should not appear")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	files := logFiles(t, tempDir)
	if _, ok := files[date+"_store.log"]; ok {
		t.Error("store log should not be created")
	}
	if !strings.Contains(files[date+"_engine.log"], "[DEBUG] reconciled") {
		t.Errorf("engine log = %q", files[date+"_engine.log"])
	}
}

func TestLevelFilter(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	if err := Configure(tempDir, Settings{DebugMode: true, Level: "warn"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	SessionDebug("quiet")
	Session("quiet")
	SessionWarn("loud")
	CloseAll()

	content := logFiles(t, tempDir)[time.Now().Format("2006-01-02")+"_session.log"]
	if strings.Contains(content, "quiet") {
		t.Errorf("messages below warn should be filtered: %q", content)
	}
	if !strings.Contains(content, "[WARN] loud") {
		t.Errorf("warn message missing: %q", content)
	}
}

func TestJSONFormat(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	if err := Configure(tempDir, Settings{DebugMode: true, Level: "debug", JSONFormat: true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	API("served %d", 3)
	CloseAll()

	content := logFiles(t, tempDir)[time.Now().Format("2006-01-02")+"_api.log"]
	if !strings.Contains(content, `"cat":"api"`) || !strings.Contains(content, `"msg":"served 3"`) {
		t.Errorf("expected JSON entry, got %q", content)
	}
}

func TestTimerLogging(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	if err := Configure(tempDir, Settings{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	timer := StartTimer(CategoryImport, "fetch")
	time.Sleep(2 * time.Millisecond)
	if elapsed := timer.Stop(); elapsed < 2*time.Millisecond {
		t.Errorf("elapsed = %v", elapsed)
	}
	StartTimer(CategoryEngine, "reconcile").StopWithThreshold(0)
	CloseAll()

	files := logFiles(t, tempDir)
	date := time.Now().Format("2006-01-02")
	if !strings.Contains(files[date+"_import.log"], "fetch completed in") {
		t.Errorf("import log = %q", files[date+"_import.log"])
	}
	if !strings.Contains(files[date+"_performance.log"], "engine/reconcile took") {
		t.Errorf("performance log = %q", files[date+"_performance.log"])
	}
}

func TestRequestLogger(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	if err := Configure(tempDir, Settings{DebugMode: true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	WithRequestID(CategoryAPI, "r-1").WithField("route", "/state").Info("ok")
	CloseAll()

	content := logFiles(t, tempDir)[time.Now().Format("2006-01-02")+"_api.log"]
	if !strings.Contains(content, "[req:r-1] ok") || !strings.Contains(content, "route:/state") {
		t.Errorf("api log = %q", content)
	}
}

func TestRequestLoggerJSON(t *testing.T) {
	resetLogging(t)
	tempDir := t.TempDir()
	if err := Configure(tempDir, Settings{DebugMode: true, Level: "warn", JSONFormat: true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	WithRequestID(CategoryAPI, "r-2").Info("filtered")
	WithRequestID(CategoryAPI, "r-3").WithField("status", 500).Error("failed")
	CloseAll()

	content := logFiles(t, tempDir)[time.Now().Format("2006-01-02")+"_api.log"]
	if strings.Contains(content, "filtered") {
		t.Errorf("info entry should be below the warn level: %q", content)
	}
	for _, want := range []string{`"msg":"failed"`, `"request_id":"r-3"`, `"status":500`} {
		if !strings.Contains(content, want) {
			t.Errorf("api log missing %s: %q", want, content)
		}
	}
}
