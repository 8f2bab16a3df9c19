package features

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/terra-ansible-demo/status-page/cmd/status_page/server"
	"github.com/terra-ansible-demo/status-page/internal/config"
	"github.com/terra-ansible-demo/status-page/internal/logging"

	"github.com/cucumber/godog"
)

var (
	// api to be used throughout all the test suites
	// for the global configuration
	api *apiFeature
)

type apiFeature struct {
	baseURL *url.URL
	server  *server.Server
	client  *http.Client
}

// this is used for a scenario to ensure that scenarios do not overwrite
// data from other scenarios...
type scenarioConfig struct {
	scenarioName string
	apiFeature   *apiFeature
	response     *http.Response
	body         []byte

	// the previous body, used when comparing two responses
	previousBody []byte
}

func logDebug(format string, a ...any) {
	fmt.Printf(format, a...)
}

func checkBaseURL(uri *url.URL, from string) {
	if uri == nil {
		panic("Invalid baseURL: nil from " + from)
	}
	if uri.String() == "" {
		panic("Empty baseURL from  " + from)
	}
}

func createApiFeature() (*apiFeature, error) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	if serverURL := os.Getenv("SERVER_URL"); serverURL != "" {
		uri, err := url.Parse(serverURL)
		if err != nil {
			return nil, fmt.Errorf("Invalid SERVER_URL: %v", err)
		}
		checkBaseURL(uri, serverURL)
		return &apiFeature{client: client, baseURL: uri}, nil
	}

	// a random port unless one is requested
	port := 0
	if sport := os.Getenv("PORT"); sport != "" {
		if eport, err := strconv.Atoi(sport); err != nil {
			logDebug("Invalid PORT: %v\n", err.Error())
		} else {
			port = eport
		}
	}

	api := &apiFeature{client: client}
	if err := api.startLocalServer(port); err != nil {
		return nil, err
	}

	uri := fmt.Sprintf("http://localhost:%d", api.server.GetPort())
	baseURL, err := url.Parse(uri)
	if err != nil {
		panic(fmt.Errorf("Invalid baseURL: %v", err))
	}
	checkBaseURL(baseURL, uri)
	api.baseURL = baseURL
	return api, nil
}

func (a *apiFeature) startLocalServer(port int) error {
	logger, _, err := logging.NewLogger()
	if err != nil {
		return err
	}
	serviceConfig, err := config.LoadConfig(logger, "0.0.1", "local", time.Now().Format(time.RFC3339), "../../config")
	if err != nil {
		return fmt.Errorf("failed to load service config: %w", err)
	}
	serviceConfig.Service.Port = port
	serviceConfig.Service.ReadyFile = ""
	serviceConfig.Service.LocalMode = true // set local mode for testing
	serviceConfig.Profiles.Active = []string{"test", "features"}

	a.server, err = server.NewServer(logger, serviceConfig, config.NewEnvironment(serviceConfig))
	if err != nil {
		return err
	}

	// Start server in background
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, &server.ServerClosedError{}) {
			logDebug("Server failed: %v\n", err.Error())
		}
	}()

	// the port is only known once the listener is bound
	for range 100 {
		if a.server.GetPort() != 0 {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("server did not bind a port")
}

func (a *apiFeature) cleanup(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		a.server.Shutdown(ctx)
	}
	return ctx, nil
}

func (tc *scenarioConfig) theServiceIsRunning(ctx context.Context) error {
	// Check that the server is actually running by sending a request to the health endpoint
	for range 10 {
		if err := tc.checkHealthEndpoint(); err != nil {
			logDebug("Error checking health endpoint: %v\n", err.Error())
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}

	return nil
}

func (tc *scenarioConfig) checkHealthEndpoint() error {
	if err := tc.iSendARequestTo("GET", "/api/v1/health"); err != nil {
		return fmt.Errorf("failed to send health check request: %w for URL %s", err, tc.apiFeature.baseURL.String())
	}
	if tc.response.StatusCode != 200 {
		return fmt.Errorf("expected status 200, got %d", tc.response.StatusCode)
	}

	match := "\"status\": \"healthy\""
	if !strings.Contains(string(tc.body), match) {
		return fmt.Errorf("expected body to contain %s, got %s", match, string(tc.body))
	}
	return nil
}

func (tc *scenarioConfig) iSendARequestTo(method, path string) error {
	url := fmt.Sprintf("%s%s", tc.apiFeature.baseURL.String(), path)
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return err
	}
	tc.response, err = tc.apiFeature.client.Do(req)
	if err != nil {
		return err
	}
	defer tc.response.Body.Close()
	tc.previousBody = tc.body
	tc.body, err = io.ReadAll(tc.response.Body)
	if err != nil {
		return err
	}
	return nil
}

func (tc *scenarioConfig) iSendARequestToTwice(method, path string) error {
	if err := tc.iSendARequestTo(method, path); err != nil {
		return err
	}
	// make sure the clock moves between the two requests
	time.Sleep(2 * time.Millisecond)
	return tc.iSendARequestTo(method, path)
}

func (tc *scenarioConfig) theResponseStatusShouldBe(status int) error {
	if tc.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d", status, tc.response.StatusCode)
	}
	return nil
}

func (tc *scenarioConfig) theResponseShouldBeJSON() error {
	contentType := tc.response.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return fmt.Errorf("expected JSON content type, got %s", contentType)
	}
	var js interface{}
	if err := json.Unmarshal(tc.body, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %v", err)
	}
	return nil
}

func (tc *scenarioConfig) theResponseShouldBeHTML() error {
	contentType := tc.response.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/html") {
		return fmt.Errorf("expected HTML content type, got %s", contentType)
	}
	if !strings.Contains(string(tc.body), "<html>") {
		return fmt.Errorf("response is not an HTML document: %s", string(tc.body))
	}
	return nil
}

func (tc *scenarioConfig) theResponseShouldContainWithValue(key, value string) error {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.body, &data); err != nil {
		return err
	}
	if data[key] != value {
		return fmt.Errorf("expected %s to be %s, got %v", key, value, data[key])
	}
	return nil
}

func (tc *scenarioConfig) theResponseShouldContain(key string) error {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.body, &data); err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return fmt.Errorf("response does not contain key: %s", key)
	}
	return nil
}

func (tc *scenarioConfig) thePageShouldContainTheLabelOnce(label string) error {
	if count := strings.Count(string(tc.body), label); count != 1 {
		return fmt.Errorf("expected the label %q once, found it %d times", label, count)
	}
	return nil
}

// pageFieldPattern matches "<strong>Label:</strong> value" with an optional <code> around the value
func pageFieldPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`<strong>` + regexp.QuoteMeta(label) + `:</strong> (?:<code[^>]*>)?([^<]*)`)
}

func (tc *scenarioConfig) pageField(label string) (string, error) {
	match := pageFieldPattern(label).FindStringSubmatch(string(tc.body))
	if match == nil {
		return "", fmt.Errorf("the page has no %s field: %s", label, string(tc.body))
	}
	return strings.TrimSpace(match[1]), nil
}

func (tc *scenarioConfig) thePageFieldShouldBe(label, value string) error {
	got, err := tc.pageField(label)
	if err != nil {
		return err
	}
	if got != value {
		return fmt.Errorf("expected %s to be %q, got %q", label, value, got)
	}
	return nil
}

func (tc *scenarioConfig) thePageFieldShouldNotBeEmpty(label string) error {
	got, err := tc.pageField(label)
	if err != nil {
		return err
	}
	if got == "" {
		return fmt.Errorf("expected %s not to be empty", label)
	}
	return nil
}

func (tc *scenarioConfig) thePageFieldShouldBeTheServerPort(label string) error {
	return tc.thePageFieldShouldBe(label, tc.apiFeature.baseURL.Port())
}

var timestampField = pageFieldPattern("Timestamp")

func (tc *scenarioConfig) theTwoPagesShouldOnlyDifferByTheirTimestamp() error {
	if tc.previousBody == nil {
		return fmt.Errorf("only one page was received")
	}
	first := timestampField.ReplaceAllString(string(tc.previousBody), "TIMESTAMP")
	second := timestampField.ReplaceAllString(string(tc.body), "TIMESTAMP")
	if first != second {
		return fmt.Errorf("pages differ by more than the timestamp:\n%s\n---\n%s", first, second)
	}
	return nil
}

func (tc *scenarioConfig) theResponseShouldContainPrometheusMetrics() error {
	bodyStr := string(tc.body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		return fmt.Errorf("response does not appear to be Prometheus metrics format")
	}
	return nil
}

func (tc *scenarioConfig) theMetricsShouldInclude(metricName string) error {
	bodyStr := string(tc.body)
	if !strings.Contains(bodyStr, metricName) {
		return fmt.Errorf("metrics do not include %s", metricName)
	}
	return nil
}

func (tc *scenarioConfig) theMetricsShouldShowRequestCountFor(path string) error {
	bodyStr := string(tc.body)
	// Check if metrics contain the path
	if !strings.Contains(bodyStr, fmt.Sprintf("endpoint=%q", path)) {
		return fmt.Errorf("metrics do not show requests for path %s", path)
	}
	return nil
}

func (tc *scenarioConfig) saveScenarioName(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	tc.scenarioName = sc.Name
	tc.body = nil
	tc.previousBody = nil
	return ctx, nil
}

func createScenarioConfig(apiConfig *apiFeature) *scenarioConfig {
	conf := new(scenarioConfig)
	conf.apiFeature = apiConfig
	return conf
}

func setUpTestConf() {
	apiFeature, err := createApiFeature()
	if err != nil {
		panic(fmt.Errorf("failed to create API feature: %v", err))
	}
	api = apiFeature
}

func waitForService() {
	tc := createScenarioConfig(api)
	for range 10 {
		if err := tc.checkHealthEndpoint(); err != nil {
			logDebug("Error checking health endpoint: %v\n", err.Error())
			time.Sleep(1 * time.Second)
		} else {
			return
		}
	}
	panic("Stopped API Tests. Service is not ready for testing.\n")
}

func tidyUpTests() {
	if api != nil {
		api.cleanup(context.Background(), nil, nil)
	}
}

func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		//nolint:gosec
		InsecureSkipVerify: true,
	}

	ctx.BeforeSuite(setUpTestConf)
	ctx.BeforeSuite(waitForService)
	ctx.AfterSuite(tidyUpTests)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := createScenarioConfig(api)

	ctx.Before(tc.saveScenarioName)

	ctx.Step(`^the service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^I send a (GET|POST|PUT|DELETE) request to "([^"]*)"$`, tc.iSendARequestTo)
	ctx.Step(`^I send a (GET) request to "([^"]*)" twice$`, tc.iSendARequestToTwice)
	ctx.Step(`^the response code should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, tc.theResponseShouldBeJSON)
	ctx.Step(`^the response should be HTML$`, tc.theResponseShouldBeHTML)
	ctx.Step(`^the response should contain "([^"]*)" with value "([^"]*)"$`, tc.theResponseShouldContainWithValue)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the page should contain the label "([^"]*)" once$`, tc.thePageShouldContainTheLabelOnce)
	ctx.Step(`^the page field "([^"]*)" should be "([^"]*)"$`, tc.thePageFieldShouldBe)
	ctx.Step(`^the page field "([^"]*)" should not be empty$`, tc.thePageFieldShouldNotBeEmpty)
	ctx.Step(`^the page field "([^"]*)" should be the server port$`, tc.thePageFieldShouldBeTheServerPort)
	ctx.Step(`^the two pages should only differ by their timestamp$`, tc.theTwoPagesShouldOnlyDifferByTheirTimestamp)
	ctx.Step(`^the response should contain Prometheus metrics$`, tc.theResponseShouldContainPrometheusMetrics)
	ctx.Step(`^the metrics should include "([^"]*)"$`, tc.theMetricsShouldInclude)
	ctx.Step(`^the metrics should show request count for "([^"]*)"$`, tc.theMetricsShouldShowRequestCountFor)
}
