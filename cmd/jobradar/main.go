package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/jobradar/config"
	"github.com/mohammad-safakhou/jobradar/internal/server"
	"github.com/mohammad-safakhou/jobradar/models"
)

func main() {
	var cfgPath string

	root := &cobra.Command{Use: "jobradar"}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			return server.Run(cfg)
		},
	}

	var (
		experience string
		salary     string
		jobNature  string
		location   string
		skills     string
		refresh    bool
	)
	search := &cobra.Command{
		Use:   "search <position>",
		Short: "Run one search from the command line and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			orch, cache, err := server.BuildOrchestrator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cache.Close()

			var skillList []string
			for _, s := range strings.Split(skills, ",") {
				if t := strings.TrimSpace(s); t != "" {
					skillList = append(skillList, t)
				}
			}
			criteria, err := models.NewSearchCriteria(args[0], experience, salary, jobNature, location, skillList)
			if err != nil {
				return err
			}

			result, err := orch.Search(context.Background(), criteria, refresh)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	search.Flags().StringVar(&experience, "experience", "", "required experience, e.g. \"2 years\"")
	search.Flags().StringVar(&salary, "salary", "", "expected salary")
	search.Flags().StringVar(&jobNature, "nature", "", "onsite, remote or hybrid")
	search.Flags().StringVar(&location, "location", "", "preferred location")
	search.Flags().StringVar(&skills, "skills", "", "comma-separated skills")
	search.Flags().BoolVar(&refresh, "refresh", false, "bypass the result cache")

	root.AddCommand(serve, search)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
