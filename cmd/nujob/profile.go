package main

import (
	"github.com/spf13/cobra"

	"github.com/AnthonySaldana/nujob/internal/infrastructure/env"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/profile"
)

func newProfileCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the applicant profile that apply would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("profile") {
				path = env.NewEnvService().Get("PROFILE_PATH")
			}
			p, err := profile.NewStore(path).Load(cmd.Context())
			if err != nil {
				return err
			}
			out, err := profile.Encode(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "profile", "", "applicant profile file, YAML or JSON (default: embedded sample)")
	return cmd
}
