package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Workers struct {
		PoolSize  int `yaml:"pool_size"`
		RateLimit int `yaml:"rate_limit"` // requests per minute per board
	} `yaml:"workers"`

	Planner struct {
		QuickBoards       int `yaml:"quick_boards"`
		QuickQueriesBoard int `yaml:"quick_queries_per_board"`
		FullQueriesBoard  int `yaml:"full_queries_per_board"`
	} `yaml:"planner"`

	LLM struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float64       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxListings int           `yaml:"max_listings"` // bound on extracted stubs per page
	} `yaml:"llm"`

	Firecrawl struct {
		APIKey     string        `yaml:"api_key"`
		APIURL     string        `yaml:"api_url"`
		Timeout    time.Duration `yaml:"timeout"`
		MaxRetries int           `yaml:"max_retries"`
		MaxPages   int           `yaml:"max_pages"`
		TargetJobs int           `yaml:"target_jobs"` // pagination stops once reached
	} `yaml:"firecrawl"`

	Rendered struct {
		UserAgent    string        `yaml:"user_agent"`
		HeadlessMode bool          `yaml:"headless_mode"`
		RenderWait   time.Duration `yaml:"render_wait"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"rendered"`

	Sanitizer struct {
		MaxTitleLen       int `yaml:"max_title_len"`
		MaxCompanyLen     int `yaml:"max_company_len"`
		MaxLocationLen    int `yaml:"max_location_len"`
		MaxDescriptionLen int `yaml:"max_description_len"`
		MaxItemLen        int `yaml:"max_item_len"`
		MaxURLLen         int `yaml:"max_url_len"`
		MaxRequirements   int `yaml:"max_requirements"`
		MaxTechStack      int `yaml:"max_tech_stack"`
		MaxListings       int `yaml:"max_listings"`
		SalaryCeiling     int `yaml:"salary_ceiling"` // annualized
	} `yaml:"sanitizer"`

	FakeFilter struct {
		Threshold     int `yaml:"threshold"`
		SalaryCeiling int `yaml:"salary_ceiling"` // annualized
	} `yaml:"fake_filter"`

	Matcher struct {
		// Factor weights; expected to sum to 1.0
		WeightSkills         float64 `yaml:"weight_skills"`
		WeightLocation       float64 `yaml:"weight_location"`
		WeightSalary         float64 `yaml:"weight_salary"`
		WeightSeniority      float64 `yaml:"weight_seniority"`
		WeightEmploymentType float64 `yaml:"weight_employment_type"`
		WeightCompanySize    float64 `yaml:"weight_company_size"`
		WeightRemote         float64 `yaml:"weight_remote"`
		WeightEducation      float64 `yaml:"weight_education"`
		WeightExperience     float64 `yaml:"weight_experience"`

		CriticalSkillMultiplier float64 `yaml:"critical_skill_multiplier"`
	} `yaml:"matcher"`

	Rescorer struct {
		Enabled  bool          `yaml:"enabled"`
		BaseURL  string        `yaml:"base_url"`
		MinScore float64       `yaml:"min_score"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"rescorer"`

	Store struct {
		Backend       string `yaml:"backend"` // memory or redis
		ReplacePolicy bool   `yaml:"replace_policy"`
		HistoryLimit  int    `yaml:"history_limit"`
	} `yaml:"store"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Scheduler struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		UserID        string `yaml:"user_id"`
	} `yaml:"scheduler"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}
	config.setDefaults()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

func (c *Config) setDefaults() {
	c.Server.Port = 8080
	c.Server.Host = "0.0.0.0"
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.IdleTimeout = 60 * time.Second

	c.Workers.PoolSize = 2
	c.Workers.RateLimit = 30

	c.Planner.QuickBoards = 2
	c.Planner.QuickQueriesBoard = 3
	c.Planner.FullQueriesBoard = 8

	c.LLM.Provider = "claude"
	c.LLM.Model = "claude-3-haiku-20240307"
	c.LLM.MaxTokens = 4096
	c.LLM.Temperature = 0.1
	c.LLM.Timeout = 30 * time.Second
	c.LLM.MaxListings = 25

	c.Firecrawl.APIURL = "https://api.firecrawl.dev"
	c.Firecrawl.Timeout = 60 * time.Second
	c.Firecrawl.MaxRetries = 3
	c.Firecrawl.MaxPages = 3
	c.Firecrawl.TargetJobs = 40

	c.Rendered.HeadlessMode = true
	c.Rendered.RenderWait = 4 * time.Second
	c.Rendered.Timeout = 90 * time.Second
	c.Rendered.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	c.Sanitizer.MaxTitleLen = 200
	c.Sanitizer.MaxCompanyLen = 150
	c.Sanitizer.MaxLocationLen = 150
	c.Sanitizer.MaxDescriptionLen = 5000
	c.Sanitizer.MaxItemLen = 500
	c.Sanitizer.MaxURLLen = 2048
	c.Sanitizer.MaxRequirements = 30
	c.Sanitizer.MaxTechStack = 50
	c.Sanitizer.MaxListings = 100
	c.Sanitizer.SalaryCeiling = 5_000_000

	c.FakeFilter.Threshold = 50
	c.FakeFilter.SalaryCeiling = 1_000_000

	c.Matcher.WeightSkills = 0.30
	c.Matcher.WeightLocation = 0.18
	c.Matcher.WeightSalary = 0.10
	c.Matcher.WeightSeniority = 0.12
	c.Matcher.WeightEmploymentType = 0.06
	c.Matcher.WeightCompanySize = 0.05
	c.Matcher.WeightRemote = 0.04
	c.Matcher.WeightEducation = 0.08
	c.Matcher.WeightExperience = 0.07
	c.Matcher.CriticalSkillMultiplier = 2.0

	c.Rescorer.Timeout = 120 * time.Second

	c.Store.Backend = "memory"
	c.Store.HistoryLimit = 50

	c.Redis.URL = "redis://localhost:6379"
	c.Redis.Timeout = 5 * time.Second

	c.Scheduler.IntervalHours = 6

	c.Logging.Level = "info"
	c.Logging.Format = "json"
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if poolSize := os.Getenv("WORKER_POOL_SIZE"); poolSize != "" {
		if n, err := strconv.Atoi(poolSize); err == nil && n > 0 {
			c.Workers.PoolSize = n
		}
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if rescorerURL := os.Getenv("RESCORER_BASE_URL"); rescorerURL != "" {
		c.Rescorer.BaseURL = rescorerURL
		c.Rescorer.Enabled = true
	}

	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}

	if replace := os.Getenv("STORE_REPLACE_POLICY"); replace != "" {
		c.Store.ReplacePolicy = replace == "true" || replace == "1"
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if schedEnabled := os.Getenv("SCHEDULER_ENABLED"); schedEnabled != "" {
		c.Scheduler.Enabled = schedEnabled == "true" || schedEnabled == "1"
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// MatchWeights bundles the scoring weights consumed by the match engine
type MatchWeights struct {
	Skills         float64
	Location       float64
	Salary         float64
	Seniority      float64
	EmploymentType float64
	CompanySize    float64
	Remote         float64
	Education      float64
	Experience     float64
}

// Weights returns the configured match weights
func (c *Config) Weights() MatchWeights {
	return MatchWeights{
		Skills:         c.Matcher.WeightSkills,
		Location:       c.Matcher.WeightLocation,
		Salary:         c.Matcher.WeightSalary,
		Seniority:      c.Matcher.WeightSeniority,
		EmploymentType: c.Matcher.WeightEmploymentType,
		CompanySize:    c.Matcher.WeightCompanySize,
		Remote:         c.Matcher.WeightRemote,
		Education:      c.Matcher.WeightEducation,
		Experience:     c.Matcher.WeightExperience,
	}
}
