//go:build integration

// Package testutil starts throwaway Postgres, MySQL and Neo4j containers for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	mysqlImage     = "mysql:8.0.36"
	postgresImage  = "postgres:16-alpine"
	neo4jImage     = "neo4j:5.20-community"
	dbName         = "graphsync"
	dbUser         = "graphsync"
	dbPassword     = "secret"
	neo4jUser      = "neo4j"
	neo4jPassword  = "graphsync-secret"
	startupTimeout = 2 * time.Minute
)

// SQLContainer is a running relational database.
type SQLContainer struct {
	Container testcontainers.Container
	Network   *testcontainers.DockerNetwork
	DB        *sql.DB
	// DSN reaches the database from the host.
	DSN string
	// NetworkDSN reaches the database from another container on Network.
	NetworkDSN string
}

// Neo4jContainer is a running graph database.
type Neo4jContainer struct {
	Container testcontainers.Container
	URI       string
	User      string
	Password  string
}

// StartPostgres starts Postgres and skips the test when Docker is unavailable.
func StartPostgres(t *testing.T, ctx context.Context) SQLContainer {
	t.Helper()

	net := newNetwork(t, ctx)
	port := nat.Port("5432/tcp")
	dsn := func(host, port string) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port, dbName)
	}

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		Networks:       []string{net.Name},
		NetworkAliases: map[string][]string{net.Name: {"postgres"}},
		WaitingFor: wait.ForSQL(port, "pgx", func(host string, port nat.Port) string {
			return dsn(host, port.Port())
		}).WithStartupTimeout(startupTimeout),
	}

	container, hostDSN := start(t, ctx, req, port, dsn)
	db := open(t, "pgx", hostDSN)

	return SQLContainer{
		Container:  container,
		Network:    net,
		DB:         db,
		DSN:        hostDSN,
		NetworkDSN: dsn("postgres", port.Port()),
	}
}

// StartMySQL starts MySQL 8 and skips the test when Docker is unavailable.
func StartMySQL(t *testing.T, ctx context.Context) SQLContainer {
	t.Helper()

	net := newNetwork(t, ctx)
	port := nat.Port("3306/tcp")
	dsn := func(host, port string) string {
		return fmt.Sprintf("root:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true", dbPassword, host, port, dbName)
	}

	req := testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": dbPassword,
			"MYSQL_DATABASE":      dbName,
		},
		Networks:       []string{net.Name},
		NetworkAliases: map[string][]string{net.Name: {"mysql"}},
		WaitingFor: wait.ForSQL(port, "mysql", func(host string, port nat.Port) string {
			return dsn(host, port.Port())
		}).WithStartupTimeout(startupTimeout),
	}

	container, hostDSN := start(t, ctx, req, port, dsn)
	db := open(t, "mysql", hostDSN)

	return SQLContainer{
		Container:  container,
		Network:    net,
		DB:         db,
		DSN:        hostDSN,
		NetworkDSN: dsn("mysql", port.Port()),
	}
}

// StartNeo4j starts a community Neo4j and skips the test when Docker is unavailable.
func StartNeo4j(t *testing.T, ctx context.Context) Neo4jContainer {
	t.Helper()

	port := nat.Port("7687/tcp")
	req := testcontainers.ContainerRequest{
		Image:        neo4jImage,
		ExposedPorts: []string{string(port), "7474/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": neo4jUser + "/" + neo4jPassword,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Started."),
			wait.ForListeningPort(port),
		).WithDeadline(startupTimeout),
	}

	container, uri := start(t, ctx, req, port, func(host, port string) string {
		return fmt.Sprintf("neo4j://%s:%s", host, port)
	})

	return Neo4jContainer{
		Container: container,
		URI:       uri,
		User:      neo4jUser,
		Password:  neo4jPassword,
	}
}

func newNetwork(t *testing.T, ctx context.Context) *testcontainers.DockerNetwork {
	t.Helper()

	net, err := network.New(ctx)
	if err != nil {
		t.Skipf("create network: %v", err)
	}
	t.Cleanup(func() {
		_ = net.Remove(ctx)
	})

	return net
}

func start(
	t *testing.T,
	ctx context.Context,
	req testcontainers.ContainerRequest,
	port nat.Port,
	address func(host, port string) string,
) (testcontainers.Container, string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("resolve port: %v", err)
	}

	return container, address(host, mappedPort.Port())
}

func open(t *testing.T, driver, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open(driver, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
