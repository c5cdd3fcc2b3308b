package wire

import "google.golang.org/grpc"

// CallOption forces every outgoing RPC to negotiate the json subtype
// registered in this package's init().
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(Name)
}

// ServerOption forces the server to decode every inbound RPC with the
// json codec regardless of what subtype (if any) the client asked for.
func ServerOption() grpc.ServerOption {
	return grpc.ForceServerCodec(codec{})
}
