package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"profile-frames/internal/records"
	"profile-frames/internal/types"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				pg, err := openPostgres(cmd, opts)
				if err != nil {
					return err
				}
				defer pg.Close()
				applied, err := pg.Migrate(cmd.Context())
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				}
				for _, name := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				pg, err := openPostgres(cmd, opts)
				if err != nil {
					return err
				}
				defer pg.Close()
				lines, err := pg.MigrationStatus(cmd.Context())
				if err != nil {
					return err
				}
				for _, l := range lines {
					fmt.Fprintln(cmd.OutOrStdout(), l)
				}
				return nil
			},
		},
	)
	return cmd
}

func openPostgres(cmd *cobra.Command, opts *rootOptions) (*records.PostgresStore, error) {
	store, err := opts.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	pg, ok := store.(*records.PostgresStore)
	if !ok {
		store.Close()
		return nil, errors.New("migrations require a postgres store")
	}
	return pg, nil
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage registered profiles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "register <username> <address>",
		Short: "Register a username or move it to a new owner address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			return registerProfile(cmd, store, args[0], args[1])
		},
	})
	return cmd
}

func registerProfile(cmd *cobra.Command, store records.Profiles, username, address string) error {
	p := types.Profile{Username: types.NormalizeUsername(username), Address: types.NormalizeAddress(address)}
	if p.Username == "" || p.Address == "" {
		return fmt.Errorf("invalid username %q or address %q", username, address)
	}
	if err := store.RegisterProfile(cmd.Context(), p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "registered %s -> %s\n", p.Username, p.Address)
	return nil
}

func newRecordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Read and write text records",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <username> [key]",
			Short: "Print a profile's text records",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := opts.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()
				return printRecords(cmd, store, args)
			},
		},
		&cobra.Command{
			Use:   "set <username> <key> <value>",
			Short: "Set a text record; an empty value deletes it",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := opts.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()
				return setRecord(cmd, store, args[0], args[1], args[2])
			},
		},
	)
	return cmd
}

func printRecords(cmd *cobra.Command, store records.Reader, args []string) error {
	recs, err := store.TextRecords(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		key := types.TextRecordKey(args[1])
		if !key.Valid() {
			return records.ErrUnknownKey
		}
		fmt.Fprintln(cmd.OutOrStdout(), recs.Get(key))
		return nil
	}
	keys := make([]string, 0, len(recs))
	for k := range recs {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, recs[types.TextRecordKey(k)])
	}
	return nil
}

func setRecord(cmd *cobra.Command, store records.Writer, username, key, value string) error {
	if err := store.SetTextRecord(cmd.Context(), username, types.TextRecordKey(key), value); err != nil {
		return fmt.Errorf("set %s on %s: %w", key, username, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s.%s updated\n", username, key)
	return nil
}
