package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExecute(t *testing.T) {
	// Save and restore flags
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"crashtrap", "--help"}
	err := Execute()
	assert.NoError(t, err)
}

func TestGetVersionFunction(t *testing.T) {
	SetVersion("test-version-func", "test-commit", "test-date")

	version := GetVersion()
	assert.Equal(t, "test-version-func", version)
}

func TestRootRegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"browse", "crash", "doctor", "latest", "watch", "serve", "submit", "init-config", "version",
	} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func TestInitConfig(t *testing.T) {
	tmpDir := t.TempDir()
	oldDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldDir) }()

	t.Run("no config file", func(t *testing.T) {
		viper.Reset()
		cfgFile = ""

		require.NoError(t, os.Chdir(tmpDir))

		err := initConfig()
		assert.NoError(t, err)

		// Defaults are in place even without a file.
		assert.Equal(t, 10, viper.GetInt("artifacts.max"))
		assert.Equal(t, "gdb", viper.GetString("debugger.name"))
		assert.Equal(t, 4, viper.GetInt("debugger.frame_offset"))
	})

	t.Run("with config file", func(t *testing.T) {
		viper.Reset()

		configPath := filepath.Join(tmpDir, "custom.yaml")
		err := os.WriteFile(configPath, []byte("log:\n  level: debug\ndebugger:\n  name: lldb\n"), 0o600)
		require.NoError(t, err)

		cfgFile = configPath
		defer func() { cfgFile = "" }()

		err = initConfig()
		assert.NoError(t, err)

		assert.Equal(t, "debug", viper.GetString("log.level"))
		assert.Equal(t, "lldb", viper.GetString("debugger.name"))
	})

	t.Run("with malformed config file", func(t *testing.T) {
		viper.Reset()

		configPath := filepath.Join(tmpDir, "broken.yaml")
		err := os.WriteFile(configPath, []byte("log: [unclosed"), 0o600)
		require.NoError(t, err)

		cfgFile = configPath
		defer func() { cfgFile = "" }()

		err = initConfig()
		assert.Error(t, err)
	})
}

func TestArtifactSettings(t *testing.T) {
	viper.Reset()
	setConfigDefaults()

	t.Run("defaults", func(t *testing.T) {
		dir, prefix := artifactSettings()
		assert.NotEmpty(t, dir)
		assert.NotEmpty(t, prefix)
	})

	t.Run("overridden", func(t *testing.T) {
		viper.Set("artifacts.dir", "/tmp/crashes")
		viper.Set("artifacts.prefix", "myapp")
		defer viper.Reset()

		dir, prefix := artifactSettings()
		assert.Equal(t, "/tmp/crashes", dir)
		assert.Equal(t, "myapp", prefix)
	})
}

func TestRunInitConfig(t *testing.T) {
	oldPath, oldForce := initPath, initForce
	defer func() { initPath, initForce = oldPath, oldForce }()

	initPath = filepath.Join(t.TempDir(), "crashtrap.yaml")
	initForce = false

	require.NoError(t, runInitConfig(nil, nil))

	data, err := os.ReadFile(initPath)
	require.NoError(t, err)

	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "gdb", cfg.Debugger.Name)
	assert.Equal(t, 4, cfg.Debugger.FrameOffset)
	assert.Equal(t, 10, cfg.Artifacts.Max)
	assert.Equal(t, "info", cfg.Log.Level)

	// Refuses to overwrite without --force.
	err = runInitConfig(nil, nil)
	assert.Error(t, err)

	initForce = true
	assert.NoError(t, runInitConfig(nil, nil))
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	require.NoError(t, atomicWriteFile(path, []byte("first"), 0o644))
	require.NoError(t, atomicWriteFile(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestProbeArtifactDir(t *testing.T) {
	t.Run("writable", func(t *testing.T) {
		dir := t.TempDir()
		detail, err := probeArtifactDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, detail)
	})

	t.Run("path blocked by a file", func(t *testing.T) {
		parent := t.TempDir()
		blocked := filepath.Join(parent, "occupied")
		require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o600))

		_, err := probeArtifactDir(blocked)
		assert.Error(t, err)
	})
}

func TestProbeCollector(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		detail, err := probeCollector(t.Context(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, ts.URL, detail)
	})

	t.Run("unhealthy", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		_, err := probeCollector(t.Context(), ts.URL)
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		ts.Close()

		_, err := probeCollector(t.Context(), ts.URL)
		assert.Error(t, err)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := probeCollector(t.Context(), "")
		assert.Error(t, err)
	})
}

func TestProbePlatform(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skipf("platform probe expectations are for linux and windows, running on %s", runtime.GOOS)
	}

	detail, err := probePlatform()
	require.NoError(t, err)
	assert.NotEmpty(t, detail)
}
