package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/John-Robertt/cldfolders/internal/logging"
)

const (
	// ErrCodeMissingCredentials 表示 cloud name / api key / api secret 任一缺失。
	ErrCodeMissingCredentials = "config_missing_credentials"
	// ErrCodeInvalid 表示某个配置项无法解析或取值非法。
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultRootFolder = "iamisigo"
	DefaultPort       = 4000
	DefaultMaxResults = 200
	DefaultEnvFile    = ".env"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"

	// OutputFileName 是 --file 模式写入工作目录的文件名（固定）。
	OutputFileName = "folders.json"
)

// viper key；环境变量名见 NewViper 中的绑定。
const (
	KeyCloudName   = "cloud_name"
	KeyAPIKey      = "api_key"
	KeyAPISecret   = "api_secret"
	KeyURL         = "cloudinary_url"
	KeyRootFolder  = "root_folder"
	KeyMaxResults  = "max_results"
	KeyAPIBaseURL  = "api_base_url"
	KeyPort        = "port"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyCORSOrigins = "cors_allowed_origins"
)

var envNames = map[string][]string{
	KeyCloudName:   {"CLOUDINARY_CLOUD_NAME"},
	KeyAPIKey:      {"CLOUDINARY_API_KEY"},
	KeyAPISecret:   {"CLOUDINARY_API_SECRET"},
	KeyURL:         {"CLOUDINARY_URL"},
	KeyRootFolder:  {"CLOUDINARY_ROOT_FOLDER"},
	KeyMaxResults:  {"CLOUDINARY_MAX_RESULTS"},
	KeyAPIBaseURL:  {"CLOUDINARY_API_BASE_URL"},
	KeyPort:        {"PORT", "port"}, // 兼容历史部署里的小写 port
	KeyLogLevel:    {"LOG_LEVEL"},
	KeyLogFormat:   {"LOG_FORMAT"},
	KeyCORSOrigins: {"CORS_ALLOWED_ORIGINS"},
}

// CloudinaryConfig 是访问上游所需的全部参数。
type CloudinaryConfig struct {
	CloudName  string
	APIKey     string
	APISecret  string
	BaseURL    string // 为空表示使用默认入口
	RootFolder string
	MaxResults int
}

// EffectiveConfig 是合并并规范化后的最终配置；各组件只消费它，不再读环境变量。
type EffectiveConfig struct {
	Cloudinary  CloudinaryConfig
	Port        int
	Log         logging.Config
	CORSOrigins []string
}

// Addr 返回 HTTP 监听地址。
func (c EffectiveConfig) Addr() string { return ":" + strconv.Itoa(c.Port) }

// LogValue 让配置可以直接写进日志（secret 不输出）。
func (c EffectiveConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("cloud_name", c.Cloudinary.CloudName),
		slog.String("root_folder", c.Cloudinary.RootFolder),
		slog.Int("max_results", c.Cloudinary.MaxResults),
		slog.String("api_base_url", c.Cloudinary.BaseURL),
		slog.Int("port", c.Port),
		slog.Any("cors_origins", c.CORSOrigins),
	)
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Key  string // 出错的环境变量/参数名
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingCredentials:
		return fmt.Sprintf("%s：缺少 %s（可设置 CLOUDINARY_URL=cloudinary://<key>:<secret>@<cloud>）", e.Code, e.Key)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%s 无效：%v", e.Code, e.Key, e.Err)
		}
		return fmt.Sprintf("%s：%s 无效", e.Code, e.Key)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadDotEnv 把 path 指向的 .env 载入进程环境。
//
// - 文件不存在不算错误（返回 loaded=false）
// - 已存在的环境变量不会被覆盖
func LoadDotEnv(path string) (loaded bool, err error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &Error{Code: ErrCodeInvalid, Key: path, Err: err}
	}
	return true, nil
}

// NewViper 返回绑定了默认值与环境变量的 viper 实例。
// 命令行 flag 由调用方通过 BindPFlag 绑定：flag（显式指定）> 环境变量 > 默认值。
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyRootFolder, DefaultRootFolder)
	v.SetDefault(KeyMaxResults, DefaultMaxResults)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)

	for key, names := range envNames {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

// Load 从 v 读取全部配置并做校验/规范化。
func Load(v *viper.Viper) (EffectiveConfig, error) {
	cc := CloudinaryConfig{
		CloudName:  strings.TrimSpace(v.GetString(KeyCloudName)),
		APIKey:     strings.TrimSpace(v.GetString(KeyAPIKey)),
		APISecret:  strings.TrimSpace(v.GetString(KeyAPISecret)),
		BaseURL:    strings.TrimSpace(v.GetString(KeyAPIBaseURL)),
		RootFolder: strings.Trim(strings.TrimSpace(v.GetString(KeyRootFolder)), "/"),
	}

	// CLOUDINARY_URL 只补全未单独设置的字段。
	if raw := strings.TrimSpace(v.GetString(KeyURL)); raw != "" {
		cloud, key, secret, err := parseCloudinaryURL(raw)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "CLOUDINARY_URL", Err: err}
		}
		if cc.CloudName == "" {
			cc.CloudName = cloud
		}
		if cc.APIKey == "" {
			cc.APIKey = key
		}
		if cc.APISecret == "" {
			cc.APISecret = secret
		}
	}

	switch {
	case cc.CloudName == "":
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingCredentials, Key: "CLOUDINARY_CLOUD_NAME"}
	case cc.APIKey == "":
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingCredentials, Key: "CLOUDINARY_API_KEY"}
	case cc.APISecret == "":
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingCredentials, Key: "CLOUDINARY_API_SECRET"}
	}

	if cc.RootFolder == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "CLOUDINARY_ROOT_FOLDER", Err: errors.New("不能为空")}
	}

	maxResults, err := intValue(v, KeyMaxResults)
	if err != nil || maxResults < 1 || maxResults > 500 {
		if err == nil {
			err = fmt.Errorf("范围应为 [1, 500]，实际是 %d", maxResults)
		}
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "CLOUDINARY_MAX_RESULTS", Err: err}
	}
	cc.MaxResults = maxResults

	if cc.BaseURL != "" {
		u, err := url.Parse(cc.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "CLOUDINARY_API_BASE_URL", Err: fmt.Errorf("%q 不是合法 URL", cc.BaseURL)}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "CLOUDINARY_API_BASE_URL", Err: fmt.Errorf("必须是 http/https：%q", cc.BaseURL)}
		}
	}

	port, err := intValue(v, KeyPort)
	if err != nil || port < 1 || port > 65535 {
		if err == nil {
			err = fmt.Errorf("范围应为 [1, 65535]，实际是 %d", port)
		}
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "PORT", Err: err}
	}

	lc := logging.Config{
		Level:  strings.TrimSpace(v.GetString(KeyLogLevel)),
		Format: strings.TrimSpace(v.GetString(KeyLogFormat)),
	}
	if err := logging.Validate(lc); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "LOG_LEVEL/LOG_FORMAT", Err: err}
	}

	origins := splitCSV(v.GetString(KeyCORSOrigins))
	for _, o := range origins {
		if o == "*" {
			continue
		}
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Key: "CORS_ALLOWED_ORIGINS", Err: fmt.Errorf("origin 必须以 http:// 或 https:// 开头：%q", o)}
		}
	}

	return EffectiveConfig{
		Cloudinary:  cc,
		Port:        port,
		Log:         lc,
		CORSOrigins: origins,
	}, nil
}

// parseCloudinaryURL 解析 cloudinary://<api_key>:<api_secret>@<cloud_name>。
func parseCloudinaryURL(raw string) (cloud, key, secret string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", "", err
	}
	if u.Scheme != "cloudinary" {
		return "", "", "", fmt.Errorf("scheme 必须是 cloudinary，实际是 %q", u.Scheme)
	}
	if u.User == nil || u.Host == "" {
		return "", "", "", errors.New("格式应为 cloudinary://<key>:<secret>@<cloud>")
	}
	secret, _ = u.User.Password()
	return u.Host, u.User.Username(), secret, nil
}

// intValue 严格解析整数配置（viper.GetInt 会把非法值静默转为 0）。
func intValue(v *viper.Viper, key string) (int, error) {
	switch x := v.Get(key).(type) {
	case int:
		return x, nil
	case nil:
		return 0, errors.New("未设置")
	default:
		s := strings.TrimSpace(fmt.Sprint(x))
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%q 不是整数", s)
		}
		return n, nil
	}
}

func splitCSV(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := strings.TrimSpace(r)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
