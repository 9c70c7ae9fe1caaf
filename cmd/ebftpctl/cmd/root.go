package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tkjenll/ebftpd/pkg/acl"
	"github.com/tkjenll/ebftpd/pkg/clog"
	"github.com/tkjenll/ebftpd/pkg/config"
	"github.com/tkjenll/ebftpd/pkg/fs"
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
	"github.com/tkjenll/ebftpd/pkg/ftpdb"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/ftpmodel"
	"github.com/tkjenll/ebftpd/pkg/ftpdb/stor"
	"github.com/tkjenll/ebftpd/pkg/session"
	"github.com/tkjenll/ebftpd/pkg/site"
	"github.com/tkjenll/ebftpd/pkg/task"
)

var (
	cfgFile  string
	userName string
)

// siteOwner is used when no --user is given. It passes every permission
// check.
var siteOwner = &ftpmodel.User{ID: 0, Name: "ebftpctl"}

// app is everything a subcommand needs, built once per invocation.
type app struct {
	cfg      *config.FTPDConfig
	stors    *stor.Stors
	registry *session.Registry
	site     *site.Site
	files    *fs.FileService
	user     *ftpmodel.User
}

var rootCmd = &cobra.Command{
	Use:   "ebftpctl",
	Short: "Administer an ebftpd site",
	Long: `ebftpctl runs site administration and file layer operations against an
ebftpd site root and user database, using the same permission rules and
quota settings as the server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .env or .yaml/.toml (default is ~/.ebftpd/ebftpd.env)")
	rootCmd.PersistentFlags().StringVarP(&userName, "user", "u", "", "act as this site user (default is the site owner)")
}

func loadConfig() (*config.FTPDConfig, error) {
	var c config.Configer
	switch strings.ToLower(filepath.Ext(cfgFile)) {
	case ".yaml", ".yml", ".toml":
		c = config.NewViperConfig(cfgFile)
	default:
		c = config.NewDotenvConfig(cfgFile)
	}

	if err := c.Load(); err != nil {
		if cfgFile != "" {
			return nil, errors.Wrapf(err, "loading %s", cfgFile)
		}
		log.Debugf("No default config file loaded: %s", err)
	}

	config.SetConfig(c)
	return config.LoadFTPDConfig(c)
}

// newApp wires the stores, policy, file service and an in-process session
// registry. The registry runs until ctx is done.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := clog.SetProcessLevelFromString(cfg.LogLevel); err != nil {
		return nil, err
	}

	db := ftpdb.MustConnectToDB(cfg.DBType, cfg.DBDSN)
	if err := ftpdb.RunMigrations(db); err != nil {
		return nil, errors.Wrap(err, "migrating database")
	}
	stors := stor.NewGormStors(db)

	resolver, err := fspath.NewResolver(cfg.SiteRoot)
	if err != nil {
		return nil, err
	}

	user := siteOwner
	var policy acl.Policy = acl.AllowAll
	if userName != "" {
		if user, err = stors.UserStor.GetUserByName(userName); err != nil {
			return nil, errors.Wrapf(err, "user %s", userName)
		}

		if policy, err = loadPolicy(cfg, stors); err != nil {
			return nil, err
		}
	}

	registry := session.NewRegistry(task.NewChannel(cfg.TaskQueue))
	go registry.Run(ctx)

	files := fs.NewFileService(resolver, acl.NewEngine(policy), fs.NewOwnerCache(), fs.Config{
		MinFreeMB:    uint64(cfg.MinFreeMB),
		DlIncomplete: cfg.DlIncomplete,
	})

	return &app{
		cfg:      cfg,
		stors:    stors,
		registry: registry,
		site:     site.New(stors.UserStor, stors.GroupStor, registry.Tasks()),
		files:    files,
		user:     user,
	}, nil
}

func loadPolicy(cfg *config.FTPDConfig, stors *stor.Stors) (acl.Policy, error) {
	if cfg.ACLFile != "" {
		return acl.NewRulePolicyFromFile(cfg.ACLFile)
	}

	return acl.NewRulePolicyFromStor(stors.PathRuleStor)
}

// runWithApp builds the app for the duration of one command.
func runWithApp(fn func(a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		return fn(a, args)
	}
}
