package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

// rpcSession posts JSON-RPC requests to a running HTTP transport.
type rpcSession struct {
	t      *testing.T
	base   string
	nextID int
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcReply struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func startHTTP(t *testing.T, s *Server) *rpcSession {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = s.ServeHTTP(ctx, addr) }()

	base := "http://" + addr
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server at %s never became healthy", addr)
		}
		time.Sleep(25 * time.Millisecond)
	}
	return &rpcSession{t: t, base: base}
}

// call sends method with params and decodes the result into out, failing
// the test on a JSON-RPC error.
func (r *rpcSession) call(method string, params any, out any) {
	r.t.Helper()
	r.nextID++
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      r.nextID,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		r.t.Fatalf("marshal %s: %v", method, err)
	}

	resp, err := http.Post(r.base+"/mcp", "application/json", bytes.NewReader(body))
	if err != nil {
		r.t.Fatalf("post %s: %v", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var reply rpcReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		r.t.Fatalf("decode %s: %v", method, err)
	}
	if reply.Error != nil {
		r.t.Fatalf("%s: %d %s", method, reply.Error.Code, reply.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(reply.Result, out); err != nil {
			r.t.Fatalf("unmarshal %s result: %v", method, err)
		}
	}
}

type toolCallResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r *rpcSession) tool(name string, args map[string]any) toolCallResult {
	r.t.Helper()
	var res toolCallResult
	r.call("tools/call", map[string]any{"name": name, "arguments": args}, &res)
	if len(res.Content) == 0 {
		r.t.Fatalf("%s returned no content", name)
	}
	return res
}

func TestHTTPTransport_Session(t *testing.T) {
	prevVersion := Version
	Version = "test"
	t.Cleanup(func() { Version = prevVersion })

	srv := newTestServer(t)
	rpc := startHTTP(t, srv)

	var init struct {
		ServerInfo struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
		Capabilities map[string]any `json:"capabilities"`
	}
	rpc.call("initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]any{"name": "planner-test", "version": "0.0.0"},
		"capabilities":    map[string]any{},
	}, &init)
	if init.ServerInfo.Name != "planner" || init.ServerInfo.Version != "test" {
		t.Errorf("unexpected server info: %+v", init.ServerInfo)
	}
	if _, ok := init.Capabilities["tools"]; !ok {
		t.Error("expected tools capability")
	}

	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	rpc.call("tools/list", map[string]any{}, &list)
	if len(list.Tools) != len(srv.toolNames()) {
		t.Errorf("got %d tools, want %d", len(list.Tools), len(srv.toolNames()))
	}

	created := rpc.tool("planner_create_project", map[string]any{"name": "Launch"})
	var project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(created.Content[0].Text), &project); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	rpc.tool("planner_create_task", map[string]any{
		"title":      "Landing page",
		"code":       "FOO-1",
		"start_date": "2024-03-10",
		"end_date":   "2024-03-15",
		"project_id": project.ID,
	})

	svg := rpc.tool("planner_timeline", map[string]any{
		"project_id": project.ID,
		"month":      "2024-03",
		"format":     "svg",
	})
	if !strings.Contains(svg.Content[0].Text, "<svg") || !strings.Contains(svg.Content[0].Text, "FOO-1") {
		t.Errorf("unexpected svg result: %.120s", svg.Content[0].Text)
	}
}
