package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/AndreyAkinshin/automark/internal/model"
)

// LuaEngineName identifies the embedded Lua engine in configuration.
const LuaEngineName = "embedded"

// LuaEngine runs Lua submissions in-process.
//
// Each run gets a new interpreter state with the base, table, string and
// math libraries, plus console primitives bound to that run only:
// print, io.write, io.read and input.
type LuaEngine struct{}

// NewLuaEngine returns the embedded Lua engine.
func NewLuaEngine() *LuaEngine {
	return &LuaEngine{}
}

// Name implements Engine.
func (e *LuaEngine) Name() string {
	return LuaEngineName
}

// Prepare compiles the submission source once. Syntax errors are returned as
// compile faults.
func (e *LuaEngine) Prepare(sub model.Submission) (Program, error) {
	name := chunkName(sub)
	chunk, err := parse.Parse(strings.NewReader(sub.Source), name)
	if err != nil {
		return nil, &Fault{Kind: FaultCompile, Message: firstLine(err.Error()), Cause: err}
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, &Fault{Kind: FaultCompile, Message: firstLine(err.Error()), Cause: err}
	}
	return &luaProgram{proto: proto}, nil
}

func chunkName(sub model.Submission) string {
	if sub.Path != "" {
		return filepath.Base(sub.Path)
	}
	if sub.ID != "" {
		return sub.ID
	}
	return "submission"
}

type luaProgram struct {
	proto *lua.FunctionProto
}

func (p *luaProgram) Close() error {
	return nil
}

// Run executes the compiled chunk in a fresh state.
func (p *luaProgram) Run(ctx context.Context, input string) (string, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if ctx != nil {
		L.SetContext(ctx)
	}

	r := &luaRun{in: newLineFeeder(input)}
	if err := openLibs(L); err != nil {
		return "", &Fault{Kind: FaultRuntime, Message: firstLine(err.Error()), Cause: err}
	}
	r.install(L)

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return "", r.fault(err)
	}
	return r.out.String(), nil
}

func openLibs(L *lua.LState) error {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("open %s library: %w", lib.name, err)
		}
	}
	// no filesystem access from submissions
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	return nil
}

// luaRun is the per-run console state.
type luaRun struct {
	in  *lineFeeder
	out strings.Builder
	// eofErr is the value raised when input runs out. It is compared by
	// identity, so a caught end-of-input followed by another error is a
	// runtime fault.
	eofErr *lua.LUserData
}

func (r *luaRun) install(L *lua.LState) {
	L.SetGlobal("print", L.NewFunction(r.print))
	L.SetGlobal("input", L.NewFunction(r.input))

	io := L.NewTable()
	L.SetField(io, "write", L.NewFunction(r.write))
	L.SetField(io, "read", L.NewFunction(r.read))
	L.SetGlobal("io", io)

	r.eofErr = L.NewUserData()
	mt := L.NewTable()
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(ErrEndOfInput.Error()))
		return 1
	}))
	L.SetMetatable(r.eofErr, mt)
}

func (r *luaRun) print(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		if i > 1 {
			r.out.WriteByte('\t')
		}
		r.out.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	r.out.WriteByte('\n')
	return 0
}

func (r *luaRun) write(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		v := L.Get(i)
		switch v.Type() {
		case lua.LTString, lua.LTNumber:
			r.out.WriteString(v.String())
		default:
			L.ArgError(i, "string expected, got "+v.Type().String())
		}
	}
	return 0
}

// input reads one line. The optional prompt argument is ignored so that
// prompts never end up in the captured output.
func (r *luaRun) input(L *lua.LState) int {
	line, ok := r.in.readLine(false)
	if !ok {
		r.raiseEOF(L)
	}
	L.Push(lua.LString(line))
	return 1
}

func (r *luaRun) read(L *lua.LState) int {
	top := L.GetTop()
	if top == 0 {
		return r.input(L)
	}
	for i := 1; i <= top; i++ {
		v, ok := r.readFormat(L, i)
		if !ok {
			L.Push(lua.LNil)
			return i
		}
		L.Push(v)
	}
	return top
}

func (r *luaRun) readFormat(L *lua.LState, i int) (lua.LValue, bool) {
	format := strings.TrimPrefix(L.CheckString(i), "*")
	if format == "" {
		L.ArgError(i, "invalid format")
	}
	switch format[0] {
	case 'l', 'L':
		line, ok := r.in.readLine(format[0] == 'L')
		if !ok {
			r.raiseEOF(L)
		}
		return lua.LString(line), true
	case 'a':
		return lua.LString(r.in.readAll()), true
	case 'n':
		token, matched, eof := r.in.readNumber()
		if eof {
			r.raiseEOF(L)
		}
		if !matched {
			return lua.LNil, false
		}
		n, err := parseLuaNumber(token)
		if err != nil {
			return lua.LNil, false
		}
		return n, true
	}
	L.ArgError(i, "invalid format")
	return lua.LNil, false
}

func parseLuaNumber(token string) (lua.LNumber, error) {
	unsigned := strings.TrimLeft(token, "+-")
	if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
		n, err := strconv.ParseInt(token, 0, 64)
		return lua.LNumber(n), err
	}
	f, err := strconv.ParseFloat(token, 64)
	return lua.LNumber(f), err
}

func (r *luaRun) raiseEOF(L *lua.LState) {
	L.Error(r.eofErr, 1)
}

// fault converts an interpreter error into a Fault without stack trace.
func (r *luaRun) fault(err error) *Fault {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok && ud == r.eofErr {
			return endOfInputFault()
		}
		msg = apiErr.Object.String()
	}
	return &Fault{Kind: FaultRuntime, Message: firstLine(msg), Cause: err}
}
