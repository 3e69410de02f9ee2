package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/export"
	"github.com/duesbook/duesbook/internal/model"
)

func newMemberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "member",
		Aliases: []string{"members"},
		Short:   "Manage members",
	}
	cmd.AddCommand(
		newMemberListCommand(),
		newMemberAddCommand(),
		newMemberUpdateCommand(),
		newMemberDeleteCommand(),
		newMemberExportCommand(),
	)
	return cmd
}

// memberFlags binds the editable member fields.
type memberFlags struct {
	name           string
	membershipType string
	contact        string
	email          string
	phone          string
	address        string
	joinDate       string
	renewalDate    string
	status         string
	notes          string
}

func (f *memberFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "business name")
	fs.StringVar(&f.membershipType, "type", "", `membership type, e.g. "Business ($250)"`)
	fs.StringVar(&f.contact, "contact", "", "contact person")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.address, "address", "", "mailing address")
	fs.StringVar(&f.joinDate, "joined", "", "join date (YYYY-MM-DD)")
	fs.StringVar(&f.renewalDate, "renews", "", "renewal date (YYYY-MM-DD)")
	fs.StringVar(&f.status, "status", "", "active or inactive")
	fs.StringVar(&f.notes, "notes", "", "notes")
}

// apply overwrites the fields of m whose flags were given.
func (f *memberFlags) apply(cmd *cobra.Command, m model.Member) (model.Member, error) {
	changed := cmd.Flags().Changed
	if changed("name") {
		m.BusinessName = f.name
	}
	if changed("type") {
		m.MembershipType = f.membershipType
	}
	if changed("contact") {
		m.ContactPerson = f.contact
	}
	if changed("email") {
		m.Email = f.email
	}
	if changed("phone") {
		m.Phone = f.phone
	}
	if changed("address") {
		m.Address = f.address
	}
	if changed("status") {
		m.Status = model.MemberStatus(f.status)
	}
	if changed("notes") {
		m.Notes = f.notes
	}
	if changed("joined") {
		d, err := parseOptionalDate(f.joinDate, "join date")
		if err != nil {
			return m, err
		}
		m.JoinDate = d
	}
	if changed("renews") {
		d, err := parseOptionalDate(f.renewalDate, "renewal date")
		if err != nil {
			return m, err
		}
		m.RenewalDate = d
	}
	return m, nil
}

func newMemberListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			all, err := a.members.List(a.ctx)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tBUSINESS\tTYPE\tCONTACT\tEMAIL\tRENEWS\tSTATUS")
			for _, m := range all {
				if status != "" && string(m.Status) != status {
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.BusinessName, m.MembershipType,
					orDash(m.ContactPerson), orDash(m.Email), orDash(model.FormatDate(m.RenewalDate)), m.Status)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "only members with this status")
	return cmd
}

func newMemberAddCommand() *cobra.Command {
	var f memberFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			m, err := f.apply(cmd, model.Member{Status: model.MemberActive})
			if err != nil {
				return err
			}
			var id int64
			err = a.mutate(func(ctx context.Context) error {
				id, err = a.members.Add(ctx, m)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added member %d: %s\n", id, m.BusinessName)
			return nil
		}),
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newMemberUpdateCommand() *cobra.Command {
	var f memberFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a member's details",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			m, err := a.members.Get(a.ctx, id)
			if err != nil {
				return err
			}
			if m, err = f.apply(cmd, m); err != nil {
				return err
			}
			err = a.mutate(func(ctx context.Context) error {
				_, err := a.members.Update(ctx, id, m)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated member %d\n", id)
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func newMemberDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member with their transactions and invoices",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			m, err := a.members.Get(a.ctx, id)
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete %s and all of its transactions and invoices?", m.BusinessName))
			if err != nil || !ok {
				return err
			}
			err = a.mutate(func(ctx context.Context) error {
				_, err := a.members.Delete(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted member %d\n", id)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newMemberExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export members as CSV",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			all, err := a.cache.Members(a.ctx)
			if err != nil {
				return err
			}
			return writeFile(cmd, out, func(w io.Writer) error {
				return export.WriteMembersCSV(w, all)
			})
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", `output file, "-" for stdout`)
	return cmd
}

func parseOptionalDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDateFlag(s, field)
}
