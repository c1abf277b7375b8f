package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/seqviz/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites script source before passing it to zygomys.
// It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: is-empty -> is_empty
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Line comments: ; and ;; become //, which is what zygomys reads.
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpCollection wraps a collection handle so it can be bound to a
// variable and passed to the operation builtins.
type sexpCollection struct {
	h *handle
}

func (c *sexpCollection) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(new-%s %q)", c.h.kind, c.h.name)
}
func (c *sexpCollection) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a scene.Vec3.
type sexpVec3 struct {
	vec scene.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value conversion
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an index from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toValue converts a script value into the Go value stored in a
// collection. Only scalars can be stored.
func toValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return ":" + name, nil
		}
		return v.S, nil
	case *zygo.SexpBool:
		return v.Val, nil
	}
	return nil, fmt.Errorf("expected number, string or boolean, got %T (%s)", s, s.SexpString(nil))
}

// fromValue converts a stored value back into a script value.
func fromValue(v any) zygo.Sexp {
	switch x := v.(type) {
	case int64:
		return &zygo.SexpInt{Val: x}
	case int:
		return &zygo.SexpInt{Val: int64(x)}
	case float64:
		return &zygo.SexpFloat{Val: x}
	case string:
		return &zygo.SexpStr{S: x}
	case bool:
		return &zygo.SexpBool{Val: x}
	}
	return zygo.SexpNull
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (scene.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return scene.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toCollection extracts a collection handle and checks its kind against
// the ones the calling builtin accepts.
func toCollection(s zygo.Sexp, kinds ...Kind) (*handle, error) {
	c, ok := s.(*sexpCollection)
	if !ok {
		return nil, fmt.Errorf("expected collection, got %T (%s)", s, s.SexpString(nil))
	}
	if len(kinds) == 0 {
		return c.h, nil
	}
	for _, k := range kinds {
		if c.h.kind == k {
			return c.h, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %s %q", kinds[0], c.h.kind, c.h.name)
}

// arity checks the positional argument count of a builtin.
func arity(name string, args []zygo.Sexp, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s requires exactly %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the collection builtins into a zygomys
// environment. Every operation blocks until its animation has settled, so
// a script plays back in source order.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals and
// kebab-case names match the underscore names registered here.
func registerBuiltins(env *zygo.Zlisp, r *run) {

	// -----------------------------------------------------------------------
	// (new-queue "q" :anchor (vec3 0 0 0) :shell 4), likewise new-stack and
	// new-array.
	// -----------------------------------------------------------------------
	constructor := func(kind Kind) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("new-%s requires a name argument", kind)
			}
			cname, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("new-%s: name: %w", kind, err)
			}

			var co collectionOptions
			if v, ok := pa.kw["anchor"]; ok {
				vec, err := toVec3(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("new-%s: anchor: %w", kind, err)
				}
				co.anchor = &vec
			}
			if v, ok := pa.kw["shell"]; ok {
				n, err := toInt(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("new-%s: shell: %w", kind, err)
				}
				if n < 0 {
					return zygo.SexpNull, fmt.Errorf("new-%s: shell must not be negative, got %d", kind, n)
				}
				co.shell = n
			}

			h, err := r.create(kind, cname, co)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("new-%s: %w", kind, err)
			}
			return &sexpCollection{h: h}, nil
		}
	}
	env.AddFunction("new_queue", constructor(KindQueue))
	env.AddFunction("new_stack", constructor(KindStack))
	env.AddFunction("new_array", constructor(KindArray))

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: scene.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (enqueue q v), (push s v)
	// -----------------------------------------------------------------------
	env.AddFunction("enqueue", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("enqueue", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindQueue)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("enqueue: %w", err)
		}
		v, err := toValue(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("enqueue: value: %w", err)
		}
		size, err := r.step(h, "enqueue", []any{v}, func() (any, error) {
			return h.queue.Enqueue(v)
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("enqueue: %w", err)
		}
		return fromValue(size), nil
	})

	env.AddFunction("push", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("push", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindStack)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push: %w", err)
		}
		v, err := toValue(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push: value: %w", err)
		}
		size, err := r.step(h, "push", []any{v}, func() (any, error) {
			return h.stack.Push(v)
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("push: %w", err)
		}
		return fromValue(size), nil
	})

	// -----------------------------------------------------------------------
	// (dequeue q), (pop s), (peek c): nil when empty
	// -----------------------------------------------------------------------
	env.AddFunction("dequeue", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("dequeue", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindQueue)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dequeue: %w", err)
		}
		v, err := r.step(h, "dequeue", nil, func() (any, error) {
			o, err := h.queue.Dequeue()
			return optionValue(o), err
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dequeue: %w", err)
		}
		return fromValue(v), nil
	})

	env.AddFunction("pop", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("pop", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindStack)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pop: %w", err)
		}
		v, err := r.step(h, "pop", nil, func() (any, error) {
			o, err := h.stack.Pop()
			return optionValue(o), err
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pop: %w", err)
		}
		return fromValue(v), nil
	})

	env.AddFunction("peek", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("peek", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindQueue, KindStack)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("peek: %w", err)
		}
		v, err := r.step(h, "peek", nil, func() (any, error) {
			if h.kind == KindQueue {
				o, err := h.queue.Peek()
				return optionValue(o), err
			}
			o, err := h.stack.Peek()
			return optionValue(o), err
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("peek: %w", err)
		}
		return fromValue(v), nil
	})

	// -----------------------------------------------------------------------
	// (insert a i v), (update a i v)
	// -----------------------------------------------------------------------
	env.AddFunction("insert", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("insert", args, 3); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindArray)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert: %w", err)
		}
		i, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert: index: %w", err)
		}
		v, err := toValue(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert: value: %w", err)
		}
		size, err := r.step(h, "insert", []any{int64(i), v}, func() (any, error) {
			return h.array.Insert(i, v)
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert: %w", err)
		}
		return fromValue(size), nil
	})

	env.AddFunction("update", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("update", args, 3); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindArray)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("update: %w", err)
		}
		i, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("update: index: %w", err)
		}
		v, err := toValue(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("update: value: %w", err)
		}
		_, err = r.step(h, "update", []any{int64(i), v}, func() (any, error) {
			return v, h.array.Update(i, v)
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("update: %w", err)
		}
		return fromValue(v), nil
	})

	// -----------------------------------------------------------------------
	// (delete a i), (get a i)
	// -----------------------------------------------------------------------
	env.AddFunction("delete", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("delete", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindArray)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		i, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: index: %w", err)
		}
		v, err := r.step(h, "delete", []any{int64(i)}, func() (any, error) {
			return h.array.Delete(i)
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		return fromValue(v), nil
	})

	env.AddFunction("get", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("get", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindArray)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("get: %w", err)
		}
		i, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("get: index: %w", err)
		}
		v, err := r.step(h, "get", []any{int64(i)}, func() (any, error) {
			return h.array.Get(i)
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("get: %w", err)
		}
		return fromValue(v), nil
	})

	// -----------------------------------------------------------------------
	// (contains a v)
	// -----------------------------------------------------------------------
	env.AddFunction("contains", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("contains", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0], KindArray)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("contains: %w", err)
		}
		v, err := toValue(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("contains: value: %w", err)
		}
		found, err := r.step(h, "contains", []any{v}, func() (any, error) {
			return h.array.Contains(v)
		})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("contains: %w", err)
		}
		return fromValue(found), nil
	})

	// -----------------------------------------------------------------------
	// (size c), (is-empty c): pure queries, not traced
	// -----------------------------------------------------------------------
	env.AddFunction("size", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("size", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("size: %w", err)
		}
		return fromValue(h.size()), nil
	})

	env.AddFunction("is_empty", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := arity("is-empty", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		h, err := toCollection(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("is-empty: %w", err)
		}
		return fromValue(h.size() == 0), nil
	})
}
