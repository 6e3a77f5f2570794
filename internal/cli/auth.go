package cli

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/seisview/seisview/pkg/auth"
	"github.com/seisview/seisview/pkg/errors"
	"github.com/seisview/seisview/pkg/query"
	"github.com/seisview/seisview/pkg/session"
)

// sessionTTL is the duration for CLI sessions (30 days).
const sessionTTL = 30 * 24 * time.Hour

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long: `Authenticate against a tile server using the device flow.

The authority and client id are discovered from the server's /config
endpoint. Your session is stored in ~/.config/seisview/sessions/`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate using the device flow",
		Long: `Start the device authorization flow.

You'll be given a code to enter at the authority's verification page.
Once authorized, your session will be saved locally for future commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if existing, _ := loadSession(ctx); existing != nil {
				printInfo("Already logged in as %s", sessionName(existing))
				printDetail("Run 'seisview auth logout' first to re-authenticate")
				return nil
			}

			_, err := c.runLogin(ctx, serverURL)
			return err
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "tile server to authenticate against (default from config)")
	return cmd
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// authStatusCommand creates the status subcommand. It exits non-zero
// when no session exists, so scripts can gate on login state.
func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(cmd.Context())
			if err != nil {
				return err
			}

			printSuccess("Session")
			printKeyValue("Subject", sessionName(sess))
			if sess.Authority != "" {
				printKeyValue("Authority", sess.Authority)
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			return nil
		},
	}
}

// =============================================================================
// Token Resolution
// =============================================================================

// resolveToken picks the bearer token for requests: the --token flag,
// then config (which folds in SEISVIEW_TOKEN), then a token signed with
// the shared key, then the cached session. Returns the token and where
// it came from, or "" when unauthenticated.
func resolveToken(ctx context.Context, cfg *Config, flagToken string) (string, string) {
	if flagToken != "" {
		return flagToken, "flag"
	}
	if cfg.Token != "" {
		return cfg.Token, "config"
	}
	if cfg.SharedKey != "" {
		tok, err := auth.SignSharedKey([]byte(cfg.SharedKey), "cli", time.Hour)
		if err == nil {
			return tok, "shared key"
		}
	}
	if sess, err := loadSession(ctx); err == nil {
		return sess.AccessToken, "session"
	}
	return "", ""
}

// =============================================================================
// Session Management
// =============================================================================

// loadSession loads the CLI session from disk.
func loadSession(ctx context.Context) (*session.Session, error) {
	store, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "not logged in (run 'seisview auth login' first)")
	}

	return sess, nil
}

func saveSession(ctx context.Context, token *auth.Token, subject, authority string) (*session.Session, error) {
	store, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := session.New(token.AccessToken, subject, authority, sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return sess, nil
}

func deleteSession(ctx context.Context) error {
	store, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	return store.DeleteSession(ctx)
}

func sessionName(sess *session.Session) string {
	if sess.Subject != "" {
		return sess.Subject
	}
	return "(anonymous)"
}

// =============================================================================
// Device Flow Login
// =============================================================================

func (c *CLI) runLogin(ctx context.Context, serverURL string) (*session.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	serverURL, err = resolveServerURL(serverURL, cfg)
	if err != nil {
		return nil, err
	}

	authority, clientID, err := discoverAuthority(ctx, cfg, serverURL)
	if err != nil {
		return nil, err
	}

	flow := auth.NewFlow(clientID, authority)

	loginCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	deviceResp, err := flow.RequestDeviceCode(loginCtx)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}

	printNewline()
	fmt.Println(StyleTitle.Render("Device Authorization"))
	printNewline()
	printKeyValue("Code", StyleNumber.Render(deviceResp.UserCode))
	printKeyValue("URL", StyleLink.Render(deviceResp.VerificationURI))
	printNewline()

	if err := openBrowser(deviceResp.VerificationURI); err != nil {
		printDetail("Copy the URL above and paste it in your browser")
	} else {
		printDetail("Opening browser...")
	}
	spinner := newSpinnerWithContext(loginCtx, "Waiting for authorization...")
	spinner.Start()

	token, err := flow.PollForToken(loginCtx, deviceResp.DeviceCode, deviceResp.Interval)
	if err != nil {
		spinner.StopWithError("Authorization failed")
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	subject := auth.Subject(token.AccessToken)
	sess, err := saveSession(ctx, token, subject, authority)
	if err != nil {
		spinner.Stop()
		return nil, fmt.Errorf("save session: %w", err)
	}

	spinner.StopWithSuccess(fmt.Sprintf("Logged in as %s", sessionName(sess)))

	return sess, nil
}

// discoverAuthority resolves the device-flow authority and client id from
// the server's /config endpoint, falling back to local config.
func discoverAuthority(ctx context.Context, cfg *Config, serverURL string) (authority, clientID string, err error) {
	authority = cfg.Authority
	clientID = cfg.ClientID

	client := query.NewClient(serverURL, "", nil, 0)
	serverCfg, err := client.FetchConfig(ctx)
	if err == nil {
		if serverCfg.Authority != "" {
			authority = serverCfg.Authority
		}
		if serverCfg.ClientID != "" {
			clientID = serverCfg.ClientID
		}
	}

	if authority == "" {
		return "", "", fmt.Errorf("%s does not advertise device auth (set authority in config, or shared_key for key-signed servers)", serverURL)
	}
	if clientID == "" {
		clientID = auth.DefaultClientID
	}
	return authority, clientID, nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
