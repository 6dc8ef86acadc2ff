package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tabletag-go/internal/api"
	"github.com/mcoot/tabletag-go/internal/factory"
	"github.com/mcoot/tabletag-go/internal/services/identity"
)

const rootToken = "00000000-0000-0000-0000-000000000000"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "tabletag-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/tabletag")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	app, err := factory.New(factory.Config{
		IdentityConfig: identity.Config{RootToken: rootToken},
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Guard:           app.Guard,
		IdentityService: app.IdentityService,
		PlayerService:   app.PlayerService,
		DevMode:         true,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing

type sessionResponse struct {
	ID    string  `json:"id"`
	Scope *string `json:"scope"`
}

type clientResponse struct {
	ID           string    `json:"id"`
	Scope        *string   `json:"scope"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

type playerResponse struct {
	ID           string          `json:"id"`
	State        json.RawMessage `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
	LastModified time.Time       `json:"last_modified"`
}

type playerSummaryResponse struct {
	ID string `json:"id"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RegistrationHandshake(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// First me registers a fresh client and saves the issued token
	output, err := cli.run("client", "me")
	require.NoError(t, err, "output: %s", output)

	var first sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &first))
	assert.Len(t, first.ID, 4)
	assert.Nil(t, first.Scope)

	savedToken, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err, "token file should have been written")
	assert.NotEmpty(t, savedToken)

	// Second me resolves the same client via the saved token
	output, err = cli.run("client", "me")
	require.NoError(t, err, "output: %s", output)

	var second sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &second))
	assert.Equal(t, first.ID, second.ID)
}

func TestCLI_RootTokenAdministration(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// The root token resolves to the synthetic admin session
	output, err := cli.runWithToken(rootToken, "client", "me")
	require.NoError(t, err, "output: %s", output)

	var rootSession sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &rootSession))
	assert.Equal(t, "ROOT", rootSession.ID)
	require.NotNil(t, rootSession.Scope)
	assert.Equal(t, "admin", *rootSession.Scope)

	// Register a regular client to administer
	output, err = cli.run("client", "me")
	require.NoError(t, err, "output: %s", output)
	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))

	// Grant it a room scope
	output, err = cli.runWithToken(rootToken, "client", "set-scope", session.ID, "room-lounge")
	require.NoError(t, err, "output: %s", output)

	var updated clientResponse
	require.NoError(t, json.Unmarshal([]byte(output), &updated))
	require.NotNil(t, updated.Scope)
	assert.Equal(t, "room-lounge", *updated.Scope)

	// List shows the client; the synthetic root session is never listed
	output, err = cli.runWithToken(rootToken, "client", "list")
	require.NoError(t, err, "output: %s", output)

	var clients []clientResponse
	require.NoError(t, json.Unmarshal([]byte(output), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, session.ID, clients[0].ID)

	// Delete it
	output, err = cli.runWithToken(rootToken, "client", "delete", session.ID)
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Equal(t, "Client deleted", msgResp.Message)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register a client and scope it into a room
	output, err := cli.run("client", "me")
	require.NoError(t, err, "output: %s", output)
	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))

	_, err = cli.runWithToken(rootToken, "client", "set-scope", session.ID, "room-lounge")
	require.NoError(t, err)

	// Register a player
	output, err = cli.run("player", "register", "04AF9B")
	require.NoError(t, err, "output: %s", output)

	var player playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "04AF9B", player.ID)
	assert.JSONEq(t, `{}`, string(player.State))

	// Patch its state twice and check the merge
	output, err = cli.run("player", "patch", "04AF9B", `{"a":1,"b":{"x":1}}`)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "patch", "04AF9B", `{"b":{"y":2},"a":null}`)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.JSONEq(t, `{"b":{"x":1,"y":2}}`, string(player.State))

	// Admin listing and deletion
	output, err = cli.runWithToken(rootToken, "player", "list")
	require.NoError(t, err, "output: %s", output)

	var summaries []playerSummaryResponse
	require.NoError(t, json.Unmarshal([]byte(output), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "04AF9B", summaries[0].ID)

	output, err = cli.runWithToken(rootToken, "player", "delete", "04AF9B")
	require.NoError(t, err, "output: %s", output)

	// Gone now
	output, err = cli.run("player", "get", "04AF9B")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Player operations without a scoped client are forbidden
	output, err := cli.run("player", "get", "04AF9B")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "forbidden")

	// Admin operations with a plain client are forbidden too
	output, err = cli.run("client", "me")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("client", "list")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "forbidden")

	// Invalid scope values are rejected
	var session sessionResponse
	output, err = cli.run("client", "me")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(output), &session))

	output, err = cli.runWithToken(rootToken, "client", "set-scope", session.ID, "bogus")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "scope")
}
