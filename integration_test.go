package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"branch-ledger/internal/config"
	"branch-ledger/internal/server"
)

const taxID = "12345678900"

type IntegrationTestSuite struct {
	suite.Suite
	postgresContainer testcontainers.Container
	serverInstance    *server.Server
	baseURL           string
	client            *http.Client
	dbPort            string
}

func (suite *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	containerReq := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "branch_ledger",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: containerReq,
		Started:          true,
	})
	if err != nil {
		suite.T().Fatalf("Failed to start postgres container: %s", err)
	}
	suite.postgresContainer = postgresContainer

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		suite.T().Fatalf("Failed to get mapped port: %s", err)
	}
	suite.dbPort = port.Port()

	suite.client = &http.Client{
		Timeout: 30 * time.Second,
	}

	if err := suite.startApplicationServer(); err != nil {
		suite.T().Fatalf("Failed to start application server: %s", err)
	}
}

// startApplicationServer starts a server against the container. Migrations
// and the journal restore run as part of startup.
func (suite *IntegrationTestSuite) startApplicationServer() error {
	cfg := config.Load()
	cfg.ServerPort = "0"
	cfg.StorageBackend = config.BackendPostgres
	cfg.DBHost = "localhost"
	cfg.DBPort = suite.dbPort
	cfg.DBUser = "postgres"
	cfg.DBPassword = "password"
	cfg.DBName = "branch_ledger"
	cfg.DBSSLMode = "disable"
	cfg.WithdrawalLimit = decimal.NewFromInt(500)
	cfg.MaxWithdrawals = 3
	cfg.WithdrawalWindow = "all-time"
	cfg.AMQPURL = ""

	serverInstance, port, err := server.StartServer(cfg)
	if err != nil {
		return err
	}

	suite.serverInstance = serverInstance
	suite.baseURL = "http://localhost:" + port

	return suite.waitForServerReady()
}

func (suite *IntegrationTestSuite) waitForServerReady() error {
	timeout := 30 * time.Second
	start := time.Now()

	for time.Since(start) < timeout {
		resp, err := http.Get(suite.baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

func (suite *IntegrationTestSuite) stopApplicationServer() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if suite.serverInstance != nil {
		suite.serverInstance.Stop(ctx)
		suite.serverInstance = nil
	}
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	suite.stopApplicationServer()

	if suite.postgresContainer != nil {
		suite.postgresContainer.Terminate(context.Background())
	}
}

func (suite *IntegrationTestSuite) call(method, path string, reqBody interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if reqBody != nil {
		body, _ := json.Marshal(reqBody)
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, suite.baseURL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	suite.T().Logf("%s %s -> %d %s", method, path, resp.StatusCode, respBody)

	var response map[string]interface{}
	if err := json.Unmarshal(respBody, &response); err != nil {
		suite.T().Logf("Failed to parse response: %s", respBody)
	}
	return resp.StatusCode, response
}

func (suite *IntegrationTestSuite) data(response map[string]interface{}) map[string]interface{} {
	data, hasData := response["data"]
	suite.Require().True(hasData, "Response should have 'data' field")
	return data.(map[string]interface{})
}

func (suite *IntegrationTestSuite) assertErrorCode(response map[string]interface{}, code string) {
	errorData, hasError := response["error"]
	if assert.True(suite.T(), hasError, "Response should have 'error' field for error cases") {
		assert.Equal(suite.T(), code, errorData.(map[string]interface{})["code"])
	}
}

// Helper to compare decimal values properly
func (suite *IntegrationTestSuite) assertDecimalEqual(expected, actual string) {
	expectedDec, err := decimal.NewFromString(expected)
	if err != nil {
		suite.T().Fatalf("Invalid expected decimal: %s", expected)
	}

	actualDec, err := decimal.NewFromString(actual)
	if err != nil {
		suite.T().Fatalf("Invalid actual decimal: %s", actual)
	}

	assert.True(suite.T(), expectedDec.Equal(actualDec),
		"Decimal values not equal: expected %s, got %s", expected, actual)
}

func (suite *IntegrationTestSuite) assertBalance(expected string) {
	status, response := suite.call(http.MethodGet, "/accounts/1", nil)
	suite.Require().Equal(http.StatusOK, status)
	suite.assertDecimalEqual(expected, suite.data(response)["balance"].(string))
}

// ------------------------------------------------------------------
// Steps below are helpers (non-test methods). They will be executed
// in the order invoked by TestFlow.
// ------------------------------------------------------------------

func (suite *IntegrationTestSuite) stepHealthCheck() {
	resp, err := suite.client.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var healthResp map[string]interface{}
	assert.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&healthResp))
	assert.Equal(suite.T(), "healthy", healthResp["status"])
	assert.Equal(suite.T(), config.BackendPostgres, healthResp["storage"])
}

func (suite *IntegrationTestSuite) stepRegisterCustomerAndAccount() {
	status, response := suite.call(http.MethodPost, "/customers", map[string]string{
		"tax_id":     taxID,
		"name":       "Ana Souza",
		"birth_date": "15-03-1990",
		"address":    "Rua A, 10 - Centro - Recife/PE",
	})
	suite.Require().Equal(http.StatusCreated, status)
	assert.Equal(suite.T(), taxID, suite.data(response)["tax_id"])

	status, response = suite.call(http.MethodPost, "/customers/"+taxID+"/accounts", nil)
	suite.Require().Equal(http.StatusCreated, status)
	account := suite.data(response)
	assert.Equal(suite.T(), float64(1), account["number"])
	assert.Equal(suite.T(), "0001", account["branch"])
	suite.assertDecimalEqual("0", account["balance"].(string))
}

func (suite *IntegrationTestSuite) stepDeposit() {
	status, response := suite.call(http.MethodPost, "/customers/"+taxID+"/deposits", map[string]string{"amount": "1000"})
	suite.Require().Equal(http.StatusCreated, status)
	assert.NotEmpty(suite.T(), suite.data(response)["transaction_id"])
	suite.assertBalance("1000")
}

func (suite *IntegrationTestSuite) stepRejectedWithdrawals() {
	status, response := suite.call(http.MethodPost, "/customers/"+taxID+"/withdrawals", map[string]string{"amount": "600"})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, status)
	suite.assertErrorCode(response, "limit_exceeded")

	status, response = suite.call(http.MethodPost, "/customers/"+taxID+"/withdrawals", map[string]string{"amount": "0"})
	assert.Equal(suite.T(), http.StatusBadRequest, status)
	suite.assertErrorCode(response, "invalid_amount")

	suite.assertBalance("1000")
}

func (suite *IntegrationTestSuite) stepWithdrawals() {
	for i := 0; i < 2; i++ {
		status, _ := suite.call(http.MethodPost, "/customers/"+taxID+"/withdrawals", map[string]string{"amount": "100"})
		suite.Require().Equal(http.StatusCreated, status)
	}
	suite.assertBalance("800")
}

// stepRestart checks that balances, history and the withdrawal count survive
// a restart through the journal.
func (suite *IntegrationTestSuite) stepRestart() {
	suite.stopApplicationServer()
	suite.Require().NoError(suite.startApplicationServer())

	suite.assertBalance("800")

	status, response := suite.call(http.MethodGet, "/customers/"+taxID+"/statement", nil)
	suite.Require().Equal(http.StatusOK, status)
	entries := suite.data(response)["entries"].([]interface{})
	assert.Len(suite.T(), entries, 3)

	status, _ = suite.call(http.MethodPost, "/customers/"+taxID+"/withdrawals", map[string]string{"amount": "100"})
	suite.Require().Equal(http.StatusCreated, status)

	status, response = suite.call(http.MethodPost, "/customers/"+taxID+"/withdrawals", map[string]string{"amount": "100"})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, status)
	suite.assertErrorCode(response, "max_withdrawals_exceeded")
	suite.assertBalance("700")

	status, response = suite.call(http.MethodPost, "/customers/"+taxID+"/accounts", nil)
	suite.Require().Equal(http.StatusCreated, status)
	assert.Equal(suite.T(), float64(2), suite.data(response)["number"])
}

func (suite *IntegrationTestSuite) stepNotFound() {
	status, response := suite.call(http.MethodGet, "/accounts/999", nil)
	assert.Equal(suite.T(), http.StatusNotFound, status)
	suite.assertErrorCode(response, "account_not_found")

	status, response = suite.call(http.MethodPost, "/customers/999/deposits", map[string]string{"amount": "10"})
	assert.Equal(suite.T(), http.StatusNotFound, status)
	suite.assertErrorCode(response, "customer_not_found")
}

func (suite *IntegrationTestSuite) stepDuplicateCustomer() {
	status, response := suite.call(http.MethodPost, "/customers", map[string]string{
		"tax_id":     taxID,
		"name":       "Someone Else",
		"birth_date": "01-01-1970",
	})
	assert.Equal(suite.T(), http.StatusConflict, status)
	suite.assertErrorCode(response, "duplicate_customer")
}

func (suite *IntegrationTestSuite) TestFlow() {
	if testing.Short() {
		suite.T().Skip("Skipping integration test in short mode")
	}

	suite.stepHealthCheck()
	suite.stepRegisterCustomerAndAccount()
	suite.stepDeposit()
	suite.stepRejectedWithdrawals()
	suite.stepWithdrawals()
	suite.stepRestart()
	suite.stepNotFound()
	suite.stepDuplicateCustomer()
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
