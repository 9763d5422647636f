// Package motor provides types, interfaces, and helpers for working with the
// nSurely Motor organization API.
//
// # Overview
//
// The motor package defines the domain types (Driver, RegisteredVehicle,
// Fleet, Policy, BillingEvent, OrgSettings) and the interfaces for the
// resource clients. A concrete implementation is provided by the motorclient
// package, which wires configuration, transport, and authentication.
//
// Getting a client
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
//	  cli, err := motorclient.New(ctx, &motor.Config{
//	    OrgID:     "0b2c...",
//	    Region:    motor.RegionEU1,
//	    APIKey:    "key",
//	    APISecret: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  driver, err := cli.Drivers().Get(ctx, "d-123", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = driver
//	}
//
// # Pagination
//
// List endpoints are paged with limit and offset. BatchIterator requests one
// page at a time and stops after the first short page:
//
//	it := cli.Drivers().List(ctx, motor.Params{"isActive": true}, nil)
//	for driver, err := range it.Seq() {
//	  if err != nil { break }
//	  _ = driver
//	}
//
// # Errors
//
// Errors fall into four categories matched with errors.Is: ErrConfiguration,
// ErrAuthentication, ErrAPI and ErrTransport. Use errors.As with *APIError to
// read the status code and body of a failed call.
package motor
