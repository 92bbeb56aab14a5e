package s3osmgr

import (
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/serverlessresearch/s3os/pkg/codec"
	"github.com/serverlessresearch/s3os/pkg/objstore"
	"github.com/serverlessresearch/s3os/pkg/objstore/localstore"
	"github.com/serverlessresearch/s3os/pkg/objstore/redisstore"
	"github.com/serverlessresearch/s3os/pkg/objstore/s3store"
	"github.com/serverlessresearch/s3os/pkg/s3os"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type S3osManager struct {
	Client *s3os.Client
	Store  objstore.Store
	Logger logrus.FieldLogger
	Cfg    *viper.Viper

	closers []func() error
}

// NewManager builds a client from configuration. Recognized userCfg keys:
//
//	"config-file": path to a config file (string)
//	"logger":      logger to use instead of a new logrus.Logger (logrus.FieldLogger)
//	"overrides":   config values that take precedence over everything (map[string]interface{})
func NewManager(userCfg map[string]interface{}) (*S3osManager, error) {
	var err error
	mgr := &S3osManager{}

	if cfgPathRaw, ok := userCfg["config-file"]; ok {
		if cfgPath, ok := cfgPathRaw.(string); ok {
			err = mgr.initConfig(&cfgPath)
		} else {
			return nil, errors.New("option 'config-file' must be of type string")
		}
	} else {
		err = mgr.initConfig(nil)
	}
	if err != nil {
		return nil, err
	}

	if overridesRaw, ok := userCfg["overrides"]; ok {
		overrides, ok := overridesRaw.(map[string]interface{})
		if !ok {
			return nil, errors.New("option 'overrides' must be of type map[string]interface{}")
		}
		for k, v := range overrides {
			mgr.Cfg.Set(k, v)
		}
	}

	if loggerRaw, ok := userCfg["logger"]; ok {
		if logger, ok := loggerRaw.(logrus.FieldLogger); ok {
			mgr.Logger = logger
		} else {
			return nil, errors.New("option 'logger' must satisfy logrus.FieldLogger")
		}
	} else {
		logger := logrus.New()
		level, err := logrus.ParseLevel(mgr.Cfg.GetString("log.level"))
		if err != nil {
			return nil, errors.Wrap(err, "Invalid log.level")
		}
		logger.SetLevel(level)
		mgr.Logger = logger
	}

	if err = mgr.initStore(); err != nil {
		return nil, err
	}

	c, err := codec.ByName(mgr.Cfg.GetString("codec.name"))
	if err != nil {
		return nil, err
	}
	if limit := mgr.Cfg.GetInt("codec.maxDecodeBytes"); limit > 0 {
		c = codec.Limit{Inner: c, MaxDecode: limit}
	}

	mgr.Client = s3os.NewClient(mgr.Store, s3os.Options{
		Codec:         c,
		Logger:        mgr.Logger,
		EnsureBuckets: mgr.Cfg.GetBool("ensureBuckets"),
	})
	return mgr, nil
}

// Destroy releases backend connections. The manager must not be used
// afterwards.
func (self *S3osManager) Destroy() {
	for _, closer := range self.closers {
		if err := closer(); err != nil {
			self.Logger.Warnf("Failed to close backend: %v", err)
		}
	}
	self.closers = nil
}

// Bucket returns the configured bucket.
func (self *S3osManager) Bucket() objstore.Bucket {
	return objstore.Bucket{
		Name:   self.Cfg.GetString("bucket.name"),
		Region: self.Cfg.GetString("bucket.region"),
	}
}

// Dict opens the dictionary id in the configured bucket.
func (self *S3osManager) Dict(id string) *s3os.Dict {
	return s3os.NewDict(self.Client, s3os.DictConfig{ID: id, Bucket: self.Bucket()})
}

// Location returns key in the configured bucket.
func (self *S3osManager) Location(key string) objstore.ObjectLocation {
	return objstore.Location(key, self.Bucket())
}

func (self *S3osManager) initConfig(cfgPath *string) error {
	// Private viper context so as not to conflict with the importer's usage.
	self.Cfg = viper.New()

	self.Cfg.SetDefault("backend", "s3")
	self.Cfg.SetDefault("bucket.name", objstore.DefaultBucketName)
	self.Cfg.SetDefault("codec.name", codec.DefaultName)
	self.Cfg.SetDefault("codec.maxDecodeBytes", 0)
	self.Cfg.SetDefault("ensureBuckets", false)
	self.Cfg.SetDefault("log.level", "info")

	// Order of precedence: S3OS_S3_REGION, AWS_DEFAULT_REGION, s3os.yaml, "us-west-2"
	self.Cfg.SetDefault("s3.region", "us-west-2")
	self.Cfg.BindEnv("s3.region", "AWS_DEFAULT_REGION")
	self.Cfg.SetDefault("s3.endpoint", "")
	self.Cfg.SetDefault("s3.forcePathStyle", false)
	self.Cfg.SetDefault("s3.maxRetries", -1)

	self.Cfg.SetDefault("local.dir", "./s3os-data")

	self.Cfg.SetDefault("redis.addr", "localhost:6379")
	self.Cfg.SetDefault("redis.db", 0)
	self.Cfg.BindEnv("redis.password", "S3OS_REDIS_PASSWORD")

	self.Cfg.SetEnvPrefix("s3os")
	self.Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	self.Cfg.AutomaticEnv()

	if cfgPath != nil {
		self.Cfg.SetConfigFile(*cfgPath)
		if err := self.Cfg.ReadInConfig(); err != nil {
			return errors.Wrap(err, "Failed to load config")
		}
		return nil
	}

	// default search path is ./configs/s3os.* then ~/.s3os/s3os.* (* can be json, yaml, etc)
	self.Cfg.SetConfigName("s3os")
	self.Cfg.AddConfigPath("./configs")
	if home, err := homedir.Dir(); err == nil {
		self.Cfg.AddConfigPath(filepath.Join(home, ".s3os"))
	}
	if err := self.Cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "Failed to load config")
		}
	}
	return nil
}

func (self *S3osManager) initStore() error {
	backend := self.Cfg.GetString("backend")

	var err error
	switch backend {
	case "s3":
		self.Store, err = s3store.NewFromConfig(s3store.Config{
			Region:          self.Cfg.GetString("s3.region"),
			Endpoint:        self.Cfg.GetString("s3.endpoint"),
			ForcePathStyle:  self.Cfg.GetBool("s3.forcePathStyle"),
			MaxRetries:      self.Cfg.GetInt("s3.maxRetries"),
			AccessKeyID:     self.Cfg.GetString("s3.accessKeyID"),
			SecretAccessKey: self.Cfg.GetString("s3.secretAccessKey"),
		}, self.Logger.WithField("module", "objstore.s3"))
	case "local":
		dir, derr := homedir.Expand(self.Cfg.GetString("local.dir"))
		if derr != nil {
			return errors.Wrap(derr, "Invalid local.dir")
		}
		self.Store = localstore.New(dir, self.Logger.WithField("module", "objstore.local"))
	case "memory":
		self.Store = objstore.NewMemStore()
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     self.Cfg.GetString("redis.addr"),
			Password: self.Cfg.GetString("redis.password"),
			DB:       self.Cfg.GetInt("redis.db"),
		})
		var rs *redisstore.RedisStore
		rs, err = redisstore.New(redisstore.Config{Client: client, CloseClient: true},
			self.Logger.WithField("module", "objstore.redis"))
		if err == nil {
			self.Store = rs
			self.closers = append(self.closers, rs.Close)
		}
	default:
		return errors.New("Unrecognized backend: " + backend)
	}

	if err != nil {
		return errors.Wrap(err, "Failed to initialize backend "+backend)
	}
	return nil
}
