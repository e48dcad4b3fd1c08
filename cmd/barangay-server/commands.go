package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/barangay/records/internal/config"
	"github.com/barangay/records/internal/domain/account"
	"github.com/barangay/records/internal/platform/db"
	"github.com/barangay/records/internal/platform/reporting"
	"github.com/barangay/records/pkg/client"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrationFiles(dir)).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationFiles(dir)).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printMigrationStatus(out io.Writer, statuses []db.MigrationStatus) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Version, s.Name, status, appliedAt)
	}
	w.Flush()
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		Long:  "Create a staff account. The password is read from --password or, when omitted, from the first line of stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := account.NewUser{}
			req.Username, _ = cmd.Flags().GetString("username")
			req.FullName, _ = cmd.Flags().GetString("full-name")
			req.Role, _ = cmd.Flags().GetString("role")
			req.Password, _ = cmd.Flags().GetString("password")
			if req.Password == "" {
				pw, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				req.Password = pw
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := account.NewService(account.NewRepoPG(pool), nil, nil, zerolog.Nop())
			u, err := svc.Create(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login name")
	createCmd.Flags().String("full-name", "", "Display name")
	createCmd.Flags().String("role", "secretary", "admin, secretary or health_worker")
	createCmd.Flags().String("password", "", "Password (read from stdin when empty)")
	_ = createCmd.MarkFlagRequired("username")
	cmd.AddCommand(createCmd)

	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// reportCmd renders reports on this machine from data fetched over the
// REST API. Flags fall back to BARANGAY_* environment variables.
func reportCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("barangay")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "report <age-distribution|report-id>",
		Short: "Render a report from a running server",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := reportClient(ctx, v)
			if err != nil {
				return err
			}
			if len(args) == 0 || v.GetBool("list") {
				return listReports(ctx, cmd.OutOrStdout(), c)
			}

			format := strings.ToLower(v.GetString("format"))
			if format != reporting.FormatPDF && format != reporting.FormatXLSX {
				return fmt.Errorf("unsupported format %q: use pdf or xlsx", format)
			}
			params, err := parseParams(v.GetStringSlice("param"))
			if err != nil {
				return err
			}

			doc, err := c.Report(ctx, args[0], params)
			if err != nil {
				return err
			}
			path := filepath.Join(v.GetString("out"), reporting.FileName(doc.Title, doc.GeneratedAt, format))
			if err := writeDocument(path, doc, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows)\n", path, doc.RowCount())
			return nil
		},
	}
	cmd.Flags().String("server", "http://localhost:8000", "Server base URL")
	cmd.Flags().String("token", "", "Bearer token; skips login when set")
	cmd.Flags().String("username", "", "Login name")
	cmd.Flags().String("password", "", "Password")
	cmd.Flags().String("format", reporting.FormatPDF, "pdf or xlsx")
	cmd.Flags().String("out", ".", "Output directory")
	cmd.Flags().StringSlice("param", nil, "Report parameter as key=value, repeatable")
	cmd.Flags().Bool("list", false, "List the available reports")
	return cmd
}

func reportClient(ctx context.Context, v *viper.Viper) (*client.Client, error) {
	c := client.New(v.GetString("server"))
	if token := v.GetString("token"); token != "" {
		c.SetToken(token)
		return c, nil
	}
	if v.GetString("username") == "" {
		return nil, fmt.Errorf("either --token or --username/--password is required")
	}
	if _, err := c.Login(ctx, v.GetString("username"), v.GetString("password")); err != nil {
		return nil, err
	}
	return c, nil
}

func listReports(ctx context.Context, out io.Writer, c *client.Client) error {
	reports, err := c.Reports(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPARAMETERS")
	fmt.Fprintln(w, "age-distribution\t"+reporting.AgeDistributionTitle+"\t")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Title, strings.Join(r.Parameters, ", "))
	}
	return w.Flush()
}

func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, val, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --param %q: want key=value", p)
		}
		params[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return params, nil
}

func writeDocument(path string, doc *reporting.Document, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if format == reporting.FormatXLSX {
		return reporting.RenderXLSX(f, doc)
	}
	return reporting.RenderPDF(f, doc)
}
