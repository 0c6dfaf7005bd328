// Package rpc is the wire contract between the gophtasks server and its
// clients: request and response messages, the JSON codec they travel in,
// the gRPC service descriptor and a typed client stub.
//
// Messages are plain Go structs; the codec is registered with grpc under
// the "json" content-subtype, and the client stub selects it on every call.
//
// The service is laid out the way protoc-gen-go-grpc lays out generated
// code: full method names under ServiceName, a TaskServiceServer interface,
// a grpc.ServiceDesc with a handler per method, and NewTaskServiceClient.
// Moving to a .proto definition means replacing this package with the
// generated one and dropping the codec; handlers and callers keep their
// shape.
package rpc
