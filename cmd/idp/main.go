package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/app"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "idp",
		Short:        "OpenID Connect identity provider",
		Version:      app.BuildVersion,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations and exit",
			Args:  cobra.NoArgs,
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "provision <fixtures.yaml>",
			Short: "Upsert OUs, users and clients from a YAML file",
			Args:  cobra.ExactArgs(1),
			RunE:  runProvision,
		},
		newReverseSubCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Printf("failed to initialize application: %v", err)
		return err
	}

	if err := application.Run(); err != nil {
		log.Printf("application error: %v", err)
		return err
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := db.MigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "database %s at schema version %d (dirty: %t)\n", cfg.DatabaseFile, version, dirty)
	return nil
}

func runProvision(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return err
	}
	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svcCfg, _ := cfg.ServiceConfig()
	p := &app.Provisioner{
		Store:  db,
		Engine: service.NewEngine(svcCfg, db, nil),
		Hasher: cryptox.NewPasswordHasher(pepper),
	}
	report, err := p.ProvisionFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "provisioned %d OUs, %d users (%d profiles), %d clients\n",
		report.OUs, report.Users, report.Profiles, report.Clients)
	return nil
}

func newReverseSubCmd() *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "reverse-sub --client <client_id> <sub>",
		Short: "Print the user UUID behind a pairwise-reversible subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()
			if cfg.SecretKey == "" {
				return errors.New("IDP_SECRET_KEY must be set to reverse subjects")
			}

			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			uuidHex, err := reverseSub(cmd.Context(), cfg, db, clientID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uuidHex)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client_id the subject was issued to")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func reverseSub(ctx context.Context, cfg app.Config, st store.Store, clientID, sub string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := st.Clients().GetClientByClientID(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("unknown client %q", clientID)
	}
	if err != nil {
		return "", err
	}

	svcCfg, _ := cfg.ServiceConfig()
	u, ok := service.NewEngine(svcCfg, st, nil).ReverseSub(ctx, client, sub)
	if !ok {
		return "", fmt.Errorf("subject %q cannot be reversed for client %q", sub, clientID)
	}
	return strings.ReplaceAll(u.String(), "-", ""), nil
}
