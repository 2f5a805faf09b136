package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/CodingDyl/virtec-crm/internal/services"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage sign-in accounts",
	}

	var in services.NewUser
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Example: `  agencyctl user create --email owner@virtec.co.za --password 's3cret-pass' --profile admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()
			u, err := services.NewUserService(s.db, s.log).Create(cmd.Context(), in)
			var ve *services.ValidationError
			if errors.As(err, &ve) {
				return fmt.Errorf("invalid user: %s", describe(ve))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Email)
			return nil
		},
	}
	create.Flags().StringVar(&in.Email, "email", "", "Sign-in email")
	create.Flags().StringVar(&in.Password, "password", "", "Password, at least 8 characters")
	create.Flags().StringVar(&in.Name, "name", "", "Display name")
	create.Flags().StringVar(&in.Profile, "profile", "", "Profile name: admin, sales or viewer")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}

// describe lists violations as "field: code" in field order.
func describe(ve *services.ValidationError) string {
	fields := make([]string, 0, len(ve.Violations))
	for f := range ve.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f + ": " + ve.Violations[f]
	}
	return out
}
