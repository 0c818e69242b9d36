package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/cmmoran/bindgen/internal/model"
)

// ProtoIntrospector reads messages and services from .proto files. Messages
// become classes; each service becomes a class with one method per unary
// RPC.
type ProtoIntrospector struct {
	Files       []string
	ImportPaths []string
	Logger      *slog.Logger
}

func (p *ProtoIntrospector) Introspect(ctx context.Context) (*Result, error) {
	log := p.logger()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := protoparse.Parser{
		ImportPaths:           p.ImportPaths,
		IncludeSourceCodeInfo: true,
	}
	fds, err := parser.ParseFiles(p.Files...)
	if err != nil {
		return nil, fmt.Errorf("parse proto files: %w", err)
	}

	res := &Result{}
	for _, fd := range fds {
		if res.Origin == "" {
			res.Origin = fd.GetPackage()
		}
		log.Debug("introspecting proto file", "file", fd.GetName(), "package", fd.GetPackage())
		for _, md := range fd.GetMessageTypes() {
			p.message(md, res)
		}
		for _, sd := range fd.GetServices() {
			res.Classes = append(res.Classes, p.service(sd, res))
		}
	}
	log.Info("introspected proto files", "files", len(fds), "classes", len(res.Classes), "warnings", len(res.Warnings))
	return res, nil
}

func (p *ProtoIntrospector) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default().With("component", "proto_introspector")
	}
	return p.Logger.With("component", "proto_introspector")
}

// protoName flattens a message name relative to its package, so nested
// messages become Outer_Inner.
func protoName(md *desc.MessageDescriptor) string {
	name := md.GetFullyQualifiedName()
	if pkg := md.GetFile().GetPackage(); pkg != "" {
		name = strings.TrimPrefix(name, pkg+".")
	}
	return strings.ReplaceAll(name, ".", "_")
}

func leadingComments(d desc.Descriptor) string {
	return strings.TrimSpace(d.GetSourceInfo().GetLeadingComments())
}

func (p *ProtoIntrospector) message(md *desc.MessageDescriptor, res *Result) {
	if md.IsMapEntry() {
		return
	}
	class := &model.RawClass{
		Name:        protoName(md),
		Description: leadingComments(md),
		Source:      md.GetFile().GetName(),
		Deprecated:  md.GetMessageOptions().GetDeprecated(),
	}
	for _, fd := range md.GetFields() {
		subject := class.Name + "." + fd.GetName()
		if fd.IsMap() {
			res.warn(WarnUnsupportedType, subject, "map fields are not supported")
			continue
		}
		td, err := fieldType(fd)
		if err != nil {
			res.warn(WarnUnsupportedType, subject, "%v", err)
			continue
		}
		description := leadingComments(fd)
		if fd.IsProto3Optional() {
			description = strings.TrimSpace(description + "\nOptional.")
		}
		class.Fields = append(class.Fields, &model.RawField{
			Name:        fd.GetName(),
			Description: description,
			Type:        td,
			Exposed:     true,
			Deprecated:  fd.GetFieldOptions().GetDeprecated(),
		})
	}
	res.Classes = append(res.Classes, class)

	for _, nested := range md.GetNestedMessageTypes() {
		p.message(nested, res)
	}
}

func fieldType(fd *desc.FieldDescriptor) (*model.RawTypeDef, error) {
	var td *model.RawTypeDef
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
		descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		td = model.Scalar(model.KindFloat)
	case descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		td = model.Scalar(model.KindInteger)
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		td = model.Scalar(model.KindBoolean)
	case descriptorpb.FieldDescriptorProto_TYPE_STRING,
		descriptorpb.FieldDescriptorProto_TYPE_BYTES,
		descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		td = model.Scalar(model.KindString)
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		var err error
		if td, err = messageType(fd.GetMessageType()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: proto type %s", errUnsupportedType, fd.GetType())
	}
	if fd.IsRepeated() {
		return model.List(td), nil
	}
	return td, nil
}

// messageType references a message class. Timestamp and Duration are
// carried as strings in their JSON form; other well-known types are not
// supported.
func messageType(md *desc.MessageDescriptor) (*model.RawTypeDef, error) {
	switch md.GetFullyQualifiedName() {
	case "google.protobuf.Timestamp", "google.protobuf.Duration":
		return model.Scalar(model.KindString), nil
	}
	if strings.HasPrefix(md.GetFullyQualifiedName(), "google.protobuf.") {
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, md.GetFullyQualifiedName())
	}
	return model.Object(protoName(md)), nil
}

func (p *ProtoIntrospector) service(sd *desc.ServiceDescriptor, res *Result) *model.RawClass {
	class := &model.RawClass{
		Name:        sd.GetName(),
		Description: leadingComments(sd),
		Source:      sd.GetFile().GetName(),
		Deprecated:  sd.GetServiceOptions().GetDeprecated(),
	}
	for _, m := range sd.GetMethods() {
		subject := class.Name + "." + m.GetName()
		if m.IsClientStreaming() || m.IsServerStreaming() {
			res.warn(WarnStreaming, subject, "streaming RPCs are not supported")
			continue
		}
		fn := &model.RawFunction{
			Name:        m.GetName(),
			Description: leadingComments(m),
			Deprecated:  m.GetMethodOptions().GetDeprecated(),
			Returns:     model.Scalar(model.KindVoid),
		}
		if in := m.GetInputType(); in.GetFullyQualifiedName() != "google.protobuf.Empty" {
			td, err := messageType(in)
			if err != nil {
				res.warn(WarnUnsupportedType, subject, "%v", err)
				continue
			}
			fn.Args = []*model.RawArg{{Name: "request", Type: td}}
		}
		if out := m.GetOutputType(); out.GetFullyQualifiedName() != "google.protobuf.Empty" {
			td, err := messageType(out)
			if err != nil {
				res.warn(WarnUnsupportedType, subject, "%v", err)
				continue
			}
			fn.Returns = td
		}
		class.Methods = append(class.Methods, fn)
	}
	return class
}
