package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"train-booking-backend/models"
	"train-booking-backend/utils"
)

var DB *gorm.DB

// withDefaults pins the driver options the application relies on: DATETIME
// columns scan into time.Time and every timestamp is read and written as UTC.
func withDefaults(c *mysqldriver.Config) *mysqldriver.Config {
	c.ParseTime = true
	c.Loc = time.UTC
	return c
}

// withCharset defaults the connection charset to utf8mb4.
func withCharset(c *mysqldriver.Config) *mysqldriver.Config {
	if c.Params == nil {
		c.Params = map[string]string{}
	}
	if _, ok := c.Params["charset"]; !ok {
		c.Params["charset"] = "utf8mb4"
	}
	return c
}

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	port := u.Port()
	if port == "" {
		port = "3306"
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	c := mysqldriver.NewConfig()
	c.User = u.User.Username()
	c.Passwd, _ = u.User.Password()
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(u.Hostname(), port)
	c.DBName = dbName
	c.Params = map[string]string{}
	for k, v := range u.Query() {
		switch k {
		case "parseTime", "loc":
		default:
			c.Params[k] = v[0]
		}
	}
	return withCharset(withDefaults(c)).FormatDSN(), dbName, nil
}

func resolveMySQLDSN() (string, string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		c, err := mysqldriver.ParseDSN(raw)
		if err != nil {
			return "", "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		// the driver keeps a parsed charset outside Params
		if !strings.Contains(raw, "charset=") {
			withCharset(c)
		}
		return withDefaults(c).FormatDSN(), c.DBName, nil
	}

	c := mysqldriver.NewConfig()
	c.User = utils.EnvOrDefault("DB_USER", "root")
	c.Passwd = utils.EnvOrDefault("DB_PASS", "")
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(utils.EnvOrDefault("DB_HOST", "127.0.0.1"), utils.EnvOrDefault("DB_PORT", "3306"))
	c.DBName = utils.EnvOrDefault("DB_NAME", "train_booking")
	return withCharset(withDefaults(c)).FormatDSN(), c.DBName, nil
}

// Migrate creates or updates the schema, parents before children.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Train{},
		&models.TrainSchedule{},
		&models.FareType{},
		&models.Booking{},
		&models.Passenger{},
	)
}

func ConnectDatabase(cfg Config) error {
	dsn, dbName, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:  newGormLogger(cfg),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("cannot get raw sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	logrus.WithField("database", dbName).Info("connected to mysql")

	if err := Migrate(DB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if cfg.SeedData {
		SeedDatabase(DB)
	}
	return nil
}
