package commands

import (
	"github.com/spf13/cobra"
)

func (a *App) newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List or inspect models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listModels()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available models",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listModels()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <model>",
		Short: "Show one model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			model, err := s.client.GetModel(a.requestContext(), args[0])
			if err != nil {
				return err
			}
			return a.writeOutput(model, []string{model.ID})
		},
	})

	return cmd
}

func (a *App) listModels() error {
	s, err := a.newSession()
	if err != nil {
		return err
	}
	list, err := s.client.ListModels(a.requestContext())
	if err != nil {
		return err
	}
	return a.writeOutput(list, list.IDs())
}
