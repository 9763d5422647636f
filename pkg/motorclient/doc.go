// Package motorclient provides the primary entry point for constructing a
// Motor API client that implements the motor.Client interface.
//
// It layers configuration validation, authentication and the request pipeline
// on top of the resource interfaces and types defined in the motor package.
// Most applications should import motorclient to build a client, then use the
// returned motor.Client to access resource-specific clients, for example
// Drivers(), Fleets(), Policies(), etc.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/nsurely/motor-go/pkg/motor"
//	  "github.com/nsurely/motor-go/pkg/motorclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := motorclient.NewWithAPIKey(ctx, motor.RegionEU1, "org-id", "key", "secret")
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  for driver, err := range cli.Drivers().List(ctx, nil, nil).Seq() {
//	    if err != nil { log.Fatal(err) }
//	    log.Println(driver.FullName())
//	  }
//	}
//
// # Authentication
//
// API key credentials win over session credentials. A session client logs in
// lazily with the configured email and password, refreshes its access token
// as it expires and retries a request once after a 401. A client without
// credentials can only reach public endpoints.
//
// # Environment
//
// ConfigFromEnv and NewFromEnv read MOTOR_ORG_ID, MOTOR_REGION, MOTOR_URL,
// MOTOR_API_KEY, MOTOR_API_SECRET, MOTOR_EMAIL, MOTOR_PASSWORD,
// MOTOR_AUTH_TYPE, MOTOR_TIMEOUT and MOTOR_DEBUG.
package motorclient
