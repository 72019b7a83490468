package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/John-Robertt/cldfolders/internal/app"
	"github.com/John-Robertt/cldfolders/internal/config"
	"github.com/John-Robertt/cldfolders/internal/export"
	"github.com/John-Robertt/cldfolders/internal/infra/httpx"
	"github.com/John-Robertt/cldfolders/internal/logging"
	"github.com/John-Robertt/cldfolders/internal/provider/cloudinary"
	"github.com/John-Robertt/cldfolders/internal/server"
	"github.com/John-Robertt/cldfolders/internal/version"
)

const (
	exitOK      = 0
	exitFailure = 1 // 上游或写文件失败
	exitUsage   = 2 // 参数或配置错误
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newCLI(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// cli 持有一次进程运行的全部外部依赖，测试通过替换它们驱动完整流程。
type cli struct {
	stdout io.Writer
	stderr io.Writer
	getwd  func() (string, error)
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, getwd: os.Getwd}
}

// exitError 把退出码带回 execute；err 为 nil 时不再打印。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type flags struct {
	file        bool
	envFile     string
	showVersion bool
}

func (c *cli) execute(ctx context.Context, args []string) int {
	cmd := c.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(c.stderr, "错误：%v\n", ee.err)
		}
		return ee.code
	}
	// cobra 自身的参数解析错误。
	fmt.Fprintf(c.stderr, "参数错误：%v\n\n", err)
	fmt.Fprint(c.stderr, cmd.UsageString())
	return exitUsage
}

func (c *cli) rootCmd() *cobra.Command {
	var f flags
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "cldfolders",
		Short: "按子目录聚合 Cloudinary 根目录下的图片与视频",
		Long: `cldfolders 列出根目录下的全部子目录，翻页取回所有 image 与 video 资源，
按子目录分组后输出 { "<子目录名>": [资源, ...] }。

默认启动 HTTP 服务（GET /folders）；--file 则把结果写入当前目录的 folders.json。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd.Context(), v, f)
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&f.file, "file", false, "把结果写入当前目录的 "+config.OutputFileName+" 后退出")
	fs.StringVar(&f.envFile, "env-file", config.DefaultEnvFile, "启动前载入的 .env 文件（不存在则忽略）")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")
	fs.Int("port", config.DefaultPort, "HTTP 监听端口（环境变量 PORT）")
	fs.String("log-level", config.DefaultLogLevel, "日志级别：debug|info|warn|error（环境变量 LOG_LEVEL）")
	fs.String("log-format", config.DefaultLogFormat, "日志格式：text|json（环境变量 LOG_FORMAT）")

	bindFlag(v, config.KeyPort, cmd, "port")
	bindFlag(v, config.KeyLogLevel, cmd, "log-level")
	bindFlag(v, config.KeyLogFormat, cmd, "log-format")
	return cmd
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("绑定 flag %q 失败：%v", name, err))
	}
}

func (c *cli) run(ctx context.Context, v *viper.Viper, f flags) error {
	if f.showVersion {
		fmt.Fprintln(c.stdout, version.Get().String())
		return nil
	}

	loaded, err := config.LoadDotEnv(f.envFile)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	eff, err := config.Load(v)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	log := logging.New(eff.Log, c.stderr)
	log.Debug("config loaded", "config", eff, "env_file", f.envFile, "env_file_loaded", loaded)

	agg := app.Aggregator{
		Source: cloudinary.Provider{
			CloudName:  eff.Cloudinary.CloudName,
			APIKey:     eff.Cloudinary.APIKey,
			APISecret:  eff.Cloudinary.APISecret,
			BaseURL:    eff.Cloudinary.BaseURL,
			MaxResults: eff.Cloudinary.MaxResults,
			Client:     httpx.NewAPIClient(httpx.Options{}),
		},
		Root:   eff.Cloudinary.RootFolder,
		Logger: log,
	}

	if f.file {
		return c.runFile(ctx, agg, eff, log)
	}
	return c.runServer(ctx, agg, eff, log)
}

func (c *cli) runFile(ctx context.Context, agg app.Aggregator, eff config.EffectiveConfig, log *slog.Logger) error {
	cwd, err := c.getwd()
	if err != nil {
		return &exitError{code: exitFailure, err: fmt.Errorf("读取当前目录失败：%w", err)}
	}

	if w, ok := pickProgressWriter(c.stderr); ok {
		ui := newProgressUI(w)
		ui.OnStart(eff, cwd)
		defer ui.Stop()
		agg.Observer = ui
	}

	path, err := export.WriteFile(ctx, agg, cwd)
	if err != nil {
		log.Error("write folders file failed", "err", err)
		return &exitError{code: exitFailure, err: err}
	}
	// stdout 只输出写入的路径，便于脚本消费。
	fmt.Fprintln(c.stdout, path)
	return nil
}

func (c *cli) runServer(ctx context.Context, agg app.Aggregator, eff config.EffectiveConfig, log *slog.Logger) error {
	if gin.Mode() == gin.DebugMode && logging.ParseLevel(eff.Log.Level) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(agg, log, server.Config{
		Addr:        eff.Addr(),
		Root:        eff.Cloudinary.RootFolder,
		CORSOrigins: eff.CORSOrigins,
	})
	log.Info("starting", "version", version.Get().Version, "root_folder", eff.Cloudinary.RootFolder, "port", eff.Port)
	if err := srv.Run(ctx); err != nil {
		return &exitError{code: exitFailure, err: fmt.Errorf("HTTP 服务异常退出：%w", err)}
	}
	log.Info("stopped")
	return nil
}
