package rpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified name of the GameService service.
	ServiceName = "clearpoints.game.v1.GameService"

	CreateGameProcedure     = "/clearpoints.game.v1.GameService/CreateGame"
	StartGameProcedure      = "/clearpoints.game.v1.GameService/StartGame"
	ClickCircleProcedure    = "/clearpoints.game.v1.GameService/ClickCircle"
	ToggleAutoPlayProcedure = "/clearpoints.game.v1.GameService/ToggleAutoPlay"
	GetStateProcedure       = "/clearpoints.game.v1.GameService/GetState"

	fileName = "clearpoints/game/v1/game.proto"
)

var methodNames = []string{"CreateGame", "StartGame", "ClickCircle", "ToggleAutoPlay", "GetState"}

// gameServiceDescriptor describes GameService. Every method takes and
// returns a google.protobuf.Struct.
var gameServiceDescriptor protoreflect.ServiceDescriptor

func init() {
	fd, err := buildFile(protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("build %s: %v", fileName, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("register %s: %v", fileName, err))
	}
	gameServiceDescriptor = fd.Services().ByName("GameService")
}

func buildFile(resolver protodesc.Resolver) (protoreflect.FileDescriptor, error) {
	structName := "." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())

	methods := make([]*descriptorpb.MethodDescriptorProto, 0, len(methodNames))
	for _, name := range methodNames {
		methods = append(methods, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(structName),
			OutputType: proto.String(structName),
		})
	}

	return protodesc.NewFile(&descriptorpb.FileDescriptorProto{
		Name:       proto.String(fileName),
		Package:    proto.String("clearpoints.game.v1"),
		Dependency: []string{structpb.File_google_protobuf_struct_proto.Path()},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("GameService"),
			Method: methods,
		}},
	}, resolver)
}

func methodDescriptor(name string) protoreflect.MethodDescriptor {
	return gameServiceDescriptor.Methods().ByName(protoreflect.Name(name))
}
