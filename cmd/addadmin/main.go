package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"munhub/config"
	"munhub/db"
	"munhub/models"
	"munhub/store/mongostore"
	"munhub/utils"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	username   string
	password   string
	role       string
	committee  string
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "addadmin",
		Short: "Create an admin or presidium account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "config/config.prod.yml", "Path to config file")
	flags.StringVar(&opts.username, "username", "", "Account username (required)")
	flags.StringVar(&opts.password, "password", "", "Account password (required)")
	flags.StringVar(&opts.role, "role", string(models.RoleAdmin), "Role: admin or presidium")
	flags.StringVar(&opts.committee, "committee", "", "Committee ID, required for presidium")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (o options) committeeID() (primitive.ObjectID, error) {
	if o.committee == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(o.committee)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid committee ID %q", o.committee)
	}
	return id, nil
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	role := models.Role(opts.role)
	if role != models.RoleAdmin && role != models.RolePresidium {
		return errors.New("role must be 'admin' or 'presidium'")
	}
	committeeID, err := opts.committeeID()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		return errors.New("database.uri must point at MongoDB")
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, database, err := db.Connect(ctx, cfg.Database.URI, cfg.Database.Name, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	st := mongostore.New(database)
	if !committeeID.IsZero() {
		if _, err := st.Committees.Get(ctx, committeeID); err != nil {
			return fmt.Errorf("committee %s: %w", committeeID.Hex(), err)
		}
	}

	created, err := utils.EnsureUser(ctx, st.Users, opts.username, opts.password, role, committeeID)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("user %s already exists", opts.username)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User created\n")
	fmt.Fprintf(out, "   Username: %s\n", opts.username)
	fmt.Fprintf(out, "   Role: %s\n", role)
	if !committeeID.IsZero() {
		fmt.Fprintf(out, "   Committee: %s\n", committeeID.Hex())
	}
	return nil
}
