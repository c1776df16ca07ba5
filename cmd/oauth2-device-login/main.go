// Command oauth2-device-login authenticates a local account holder against a
// remote OAuth2 authorization server using the device authorization grant.
// It stands in for the host authentication stack's plugin hook: exit status
// 0 means the remote identity was bound to the local account.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/kelseyhightower/envconfig"

	"github.com/wrale/oauth2-device-auth/internal/authflow"
	"github.com/wrale/oauth2-device-auth/internal/config"
	"github.com/wrale/oauth2-device-auth/internal/devicegrant"
	"github.com/wrale/oauth2-device-auth/internal/identity"
	"github.com/wrale/oauth2-device-auth/internal/logging"
	"github.com/wrale/oauth2-device-auth/internal/prompt"
)

// Version is set by the build process
var Version = "dev"

func main() {
	if err := run(); err != nil {
		// End users get a generic line; the typed failure detail only
		// reaches the operator log.
		fmt.Fprintln(os.Stderr, "Authentication failed")
		os.Exit(1)
	}
}

func run() error {
	var env Env
	if err := envconfig.Process("OAUTH2_DEVICE", &env); err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}

	configPath := flag.String("config", env.ConfigPath, "path to the JSON configuration file")
	localUser := flag.String("user", env.User, "local account to authenticate (default: invoking user)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(Version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oauth2-device-login: %v\n", err)
		return err
	}
	if env.LogPath != "" {
		cfg.LogPath = env.LogPath
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}

	log, closeLog, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oauth2-device-login: %v\n", err)
		return err
	}
	defer closeLog()

	account := *localUser
	if account == "" {
		current, err := user.Current()
		if err != nil {
			log.Errorf("resolving invoking user: %v", err)
			return err
		}
		account = current.Username
	}

	client, err := devicegrant.New(cfg.ClientConfig(), devicegrant.WithLogger(log))
	if err != nil {
		log.Errorf("building OAuth client: %v", err)
		return err
	}

	var validatorOpts []identity.ValidatorOption
	if cfg.UsernameSuffix != "" {
		validatorOpts = append(validatorOpts, identity.WithMatcher(identity.SuffixMatcher{Suffix: cfg.UsernameSuffix}))
	}
	if cfg.RequiredAudience != "" {
		validatorOpts = append(validatorOpts, identity.WithRequiredAudience(cfg.RequiredAudience))
	}
	validator := identity.NewValidator(validatorOpts...)

	auth := authflow.New(client, validator, authflow.WithLogger(log))

	res, err := auth.Login(context.Background(), account, func(dc *devicegrant.DeviceCodeResponse) error {
		opts := []prompt.Option{}
		if cfg.QREnabled {
			opts = append(opts, prompt.WithQR())
		}
		fmt.Println(prompt.New(dc, opts...).Render())

		// Block until the user acknowledges, mirroring the conversation
		// step of a real login stack. Polling tolerates an early ENTER.
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("identity validation failed")
	}

	fmt.Printf("Authenticated as %s\n", account)
	return nil
}
