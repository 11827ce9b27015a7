package main

import (
	"fmt"
	"io"
)

// Output defines a uniform interface to write to some stream — stdout,
// stderr, or a test buffer.
type Output interface {
	Print(text string) (int, error)
	Println(text string) (int, error)
	Printf(format string, args ...interface{}) (int, error)
	Printfln(format string, args ...interface{}) (int, error)
}

// plainOutput writes data in a raw format to the wrapped writer.
type plainOutput struct {
	device io.Writer
}

func newOutput(w io.Writer) Output {
	return &plainOutput{device: w}
}

func (o *plainOutput) Print(text string) (int, error) {
	return o.device.Write([]byte(text))
}

func (o *plainOutput) Println(text string) (int, error) {
	n1, err1 := o.device.Write([]byte(text))
	if err1 != nil {
		return n1, err1
	}
	n2, err2 := o.device.Write([]byte{'\n'})
	return n1 + n2, err2
}

func (o *plainOutput) Printf(format string, args ...interface{}) (int, error) {
	return o.device.Write([]byte(fmt.Sprintf(format, args...)))
}

func (o *plainOutput) Printfln(format string, args ...interface{}) (int, error) {
	return o.device.Write([]byte(fmt.Sprintf(format+"\n", args...)))
}

// verboseOutput wraps an Output and discards everything unless enabled is
// true, so `-v` can gate progress lines without threading a bool through
// every call site.
type verboseOutput struct {
	inner   Output
	enabled bool
}

func (o *verboseOutput) Print(text string) (int, error) {
	if !o.enabled {
		return 0, nil
	}
	return o.inner.Print(text)
}

func (o *verboseOutput) Println(text string) (int, error) {
	if !o.enabled {
		return 0, nil
	}
	return o.inner.Println(text)
}

func (o *verboseOutput) Printf(format string, args ...interface{}) (int, error) {
	if !o.enabled {
		return 0, nil
	}
	return o.inner.Printf(format, args...)
}

func (o *verboseOutput) Printfln(format string, args ...interface{}) (int, error) {
	if !o.enabled {
		return 0, nil
	}
	return o.inner.Printfln(format, args...)
}
