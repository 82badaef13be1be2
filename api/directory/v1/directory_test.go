package directoryv1

import (
	_ "embed"
	"encoding/json"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed directory.proto
var protoSource string

func TestServiceDescMatchesProto(t *testing.T) {
	assert.Contains(t, protoSource, "package directory.v1;")
	assert.Equal(t, "directory.v1.Directory", Directory_ServiceDesc.ServiceName)

	rpcs := regexp.MustCompile(`rpc (\w+)\(`).FindAllStringSubmatch(protoSource, -1)
	var names []string
	for _, m := range rpcs {
		names = append(names, m[1])
	}
	var methods []string
	for _, m := range Directory_ServiceDesc.Methods {
		methods = append(methods, m.MethodName)
	}
	assert.ElementsMatch(t, names, methods)
}

func TestMessageFieldsMatchProto(t *testing.T) {
	messages := map[string]any{
		"Filter":         Filter{},
		"PageRequest":    PageRequest{},
		"PageResponse":   PageResponse{},
		"GetItemRequest": GetItemRequest{},
		"ItemResponse":   ItemResponse{},
		"CountsResponse": CountsResponse{},
	}

	for name, msg := range messages {
		t.Run(name, func(t *testing.T) {
			body := regexp.MustCompile(`(?s)message ` + name + ` \{(.*?)\n\}`).FindStringSubmatch(protoSource)
			require.Len(t, body, 2, "message %s missing from proto", name)

			typ := reflect.TypeOf(msg)
			for i := 0; i < typ.NumField(); i++ {
				tag := strings.Split(typ.Field(i).Tag.Get("json"), ",")[0]
				assert.Regexp(t, `\s`+tag+` = \d+;`, body[1], "field %s.%s", name, tag)
			}
		})
	}
}

func TestPageRequestJSONNames(t *testing.T) {
	b, err := json.Marshal(PageRequest{Collection: "members", First: 5, Term: "ram", Filter: &Filter{ActivityType: "EVENT"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"collection":"members","first":5,"term":"ram","filter":{"activity_type":"EVENT"}}`, string(b))
}
