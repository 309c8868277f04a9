package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"movie_keywords/internal/app"
	"movie_keywords/internal/config"
	"movie_keywords/internal/dictionary"
	"movie_keywords/internal/logger"
)

const version = "1.0.0"

var (
	cfgFile string

	dbHost     string
	dbPort     int
	dbName     string
	dbUser     string
	dbPassword string
	collection string
	outDir     string

	dictDir   string
	minLength int
)

var rootCmd = &cobra.Command{
	Use:   "moviekw",
	Short: "Builds a keyword dictionary from eligible movies in MongoDB",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage: true,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Filter the movie collection and write the keyword files",
	RunE:  runFetch,
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Print the dictionary keywords found in each line of stdin",
	RunE:  runMatch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")

	fetchCmd.Flags().StringVar(&dbHost, "dbhost", "", "address of the MongoDB server")
	fetchCmd.Flags().IntVar(&dbPort, "dbport", 0, "port of the MongoDB server")
	fetchCmd.Flags().StringVarP(&dbName, "dbname", "n", "", "database name")
	fetchCmd.Flags().StringVar(&dbUser, "username", "", "database user")
	fetchCmd.Flags().StringVar(&dbPassword, "password", "", "password for the user")
	fetchCmd.Flags().StringVarP(&collection, "collection", "v", "", "collection holding the movie documents")
	fetchCmd.Flags().StringVar(&outDir, "out", "", "directory for the keyword files")

	matchCmd.Flags().StringVar(&dictDir, "dir", "", "directory holding the keyword files (default output.dir)")
	matchCmd.Flags().IntVar(&minLength, "min-length", 0, "ignore keywords shorter than this (default dictionary.min_keyword_length)")

	rootCmd.AddCommand(fetchCmd, matchCmd, &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "moviekw version %s\n", version)
		},
	})
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dbhost") {
		cfg.DB.Host = dbHost
	}
	if flags.Changed("dbport") {
		cfg.DB.Port = dbPort
	}
	if flags.Changed("dbname") {
		cfg.DB.Database = dbName
	}
	if flags.Changed("username") {
		cfg.DB.Username = dbUser
	}
	if flags.Changed("password") {
		cfg.DB.Password = dbPassword
	}
	if flags.Changed("collection") {
		cfg.DB.Collection = collection
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	return cfg, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	keywordApp, err := app.NewKeywordApp(cfg, log)
	if err != nil {
		return err
	}
	keywordApp.SetOutput(cmd.OutOrStdout())

	res, err := keywordApp.Run(cmd.Context())
	if err != nil {
		log.Error("keyword run failed", logger.Error(err))
		return err
	}

	log.Info("keyword run finished",
		logger.String("run_id", res.RunID),
		logger.Int("movies", res.Accumulator.Total()),
		logger.String("dir", cfg.Output.Dir))
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dictDir == "" {
		dictDir = cfg.Output.Dir
	}
	if !cmd.Flags().Changed("min-length") {
		minLength = cfg.Dictionary.MinKeywordLength
	}

	dict, err := dictionary.Load(dictDir, minLength)
	if err != nil {
		return err
	}
	if dict.Size() == 0 {
		return fmt.Errorf("no keywords found in %s", dictDir)
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		matches := dict.Match(scanner.Text())
		found := make([]string, 0, len(matches))
		for _, m := range matches {
			found = append(found, m.Keyword)
		}
		fmt.Fprintln(out, strings.Join(found, "\t"))
	}
	return scanner.Err()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
