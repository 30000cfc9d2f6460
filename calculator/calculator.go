// Package calculator evaluates the arithmetic expressions found in
// aperture macro bodies: + - / % and x (or X) for multiplication,
// parentheses, numeric literals and $-prefixed variables.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type OpCode int

const (
	Nop OpCode = iota
	Add
	Mul
	Mod
)

func (oc OpCode) String() string {
	switch oc {
	case Add:
		return "+ "
	case Mul:
		return "x "
	case Mod:
		return "% "
	case Nop:
		return "<nop> "
	default:
		return "bad OpCode "
	}
}

type Stack struct {
	data []int
}

func NewStack() *Stack {
	return &Stack{}
}

func (stack *Stack) Push(val int) {
	stack.data = append(stack.data, val)
}

func (stack *Stack) Pop() (int, error) {
	slen := len(stack.data)
	if slen == 0 {
		return 0, errors.New("unbalanced parentheses")
	}
	retVal := stack.data[slen-1]
	stack.data = stack.data[:slen-1]
	return retVal, nil
}

// CalcExpression evaluates str using the variable values in vars.
// Referencing a variable absent from vars is an error. The expression is
// reduced from the innermost parentheses outwards; each reduced group
// becomes a temporary $$n variable.
func CalcExpression(str string, vars map[string]float64) (float64, error) {
	if vars == nil {
		vars = make(map[string]float64)
	}
	varStorage := make(map[string]float64, len(vars))
	for k, v := range vars {
		varStorage[k] = v
	}
	stack := NewStack()
	var tempVarId = 0
	var valName = ""
	const leftPar = '('
	const rightPar = ')'
	str = "(" + strings.TrimSpace(str) + ")"
	for {
		reduced := false
		for i, r := range str {
			if r == leftPar {
				stack.Push(i)
				continue
			}
			if r == rightPar {
				lPar, err := stack.Pop()
				if err != nil {
					return 0, fmt.Errorf("%v in %q", err, str)
				}
				substring := str[lPar+1 : i]
				tf, err := TokenizeFormulae(substring, varStorage)
				if err != nil {
					return 0, err
				}
				val, err := CalcTokenizedFormulae(tf)
				if err != nil {
					return 0, err
				}
				valName = "$$" + strconv.Itoa(tempVarId)
				tempVarId++
				varStorage[valName] = val
				str = strings.Replace(str, str[lPar:i+1], valName, 1)
				reduced = true
				break
			}
		}
		stack.data = stack.data[:0]
		if str == valName {
			break
		}
		if !reduced {
			return 0, fmt.Errorf("unbalanced parentheses in %q", str)
		}
	}
	return varStorage[str], nil
}

type TokenizedFormula struct {
	value     float64
	operation OpCode
}

func (tf *TokenizedFormula) String() string {
	return strconv.FormatFloat(tf.value, 'f', 10, 64) + " " + tf.operation.String()
}

// TokenizeFormulae splits a parenthesis-free expression into value/opcode
// pairs. Subtraction becomes addition of a negated value, division
// becomes multiplication by an inverted one, so the fold only ever sees
// Add and Mul.
func TokenizeFormulae(str string, varStorage map[string]float64) ([]TokenizedFormula, error) {
	retVal := make([]TokenizedFormula, 0)
	runeStr := []rune(strings.TrimSpace(str))
	tokenStart := true
	needInvNext := false
	needNegNext := false
	convString := ""
	var opCode OpCode

	resolve := func() (float64, error) {
		var floatVal float64
		var err error
		sign := 1.0
		vs := convString
		if strings.HasPrefix(vs, "-") {
			sign = -1.0
			vs = vs[1:]
		} else if strings.HasPrefix(vs, "+") {
			vs = vs[1:]
		}
		if strings.HasPrefix(vs, "$") {
			val, ok := varStorage[vs]
			if !ok {
				return 0, fmt.Errorf("undefined variable %s in expression %q", vs, str)
			}
			floatVal = sign * val
		} else {
			floatVal, err = strconv.ParseFloat(convString, 64)
			if err != nil {
				return 0, fmt.Errorf("unable to parse %q in expression %q", convString, str)
			}
		}
		if needInvNext {
			if floatVal == 0 {
				return 0, fmt.Errorf("division by zero in expression %q", str)
			}
			floatVal = 1 / floatVal
		}
		if needNegNext {
			floatVal = -floatVal
		}
		return floatVal, nil
	}

	for i := 0; i < len(runeStr); i++ {
		if tokenStart {
			if runeStr[i] == '+' || runeStr[i] == '-' {
				tokenStart = false
				convString = convString + string(runeStr[i])
				continue
			}
		}
		var needNN, needIN bool
		switch runeStr[i] {
		case '+':
			opCode = Add
		case '-':
			opCode = Add
			needNN = true
		case '/':
			opCode = Mul
			needIN = true
		case 'x', 'X', '*':
			opCode = Mul
		case '%':
			opCode = Mod
		case ' ':
			continue
		default:
			convString = convString + string(runeStr[i])
			tokenStart = false
			continue
		}
		floatVal, err := resolve()
		if err != nil {
			return nil, err
		}
		retVal = append(retVal, TokenizedFormula{floatVal, opCode})
		tokenStart = true
		convString = ""
		needInvNext = needIN
		needNegNext = needNN
	}
	if convString == "" {
		return nil, fmt.Errorf("expression %q ends with an operator", str)
	}
	floatVal, err := resolve()
	if err != nil {
		return nil, err
	}
	retVal = append(retVal, TokenizedFormula{floatVal, Nop})
	return retVal, nil
}

// CalcTokenizedFormulae folds the token list left to right. Mul and Mod
// bind tighter than Add, so runs of them collapse into a single value
// before it joins the sum.
func CalcTokenizedFormulae(tf []TokenizedFormula) (float64, error) {
	if len(tf) == 0 {
		return 0, errors.New("empty expression")
	}
	sum := 0.0
	runVal := tf[0].value
	pending := tf[0].operation
	for i := 1; i < len(tf); i++ {
		switch pending {
		case Mul:
			runVal = runVal * tf[i].value
		case Mod:
			if tf[i].value == 0 {
				return 0, errors.New("modulo by zero")
			}
			runVal = math.Mod(runVal, tf[i].value)
		case Add:
			sum += runVal
			runVal = tf[i].value
		}
		pending = tf[i].operation
	}
	if pending != Nop {
		return 0, errors.New("expression ends inside a product")
	}
	return sum + runVal, nil
}
