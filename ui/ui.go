// Package ui renders the shared presentational components as templ components.
package ui

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

type Variant string

const (
	VariantPrimary   Variant = "primary"
	VariantSecondary Variant = "secondary"
	VariantDanger    Variant = "danger"
	VariantGhost     Variant = "ghost"
)

type Size string

const (
	SizeSm Size = "sm"
	SizeMd Size = "md"
	SizeLg Size = "lg"
)

type Padding string

const (
	PaddingNone Padding = "none"
	PaddingSm   Padding = "sm"
	PaddingMd   Padding = "md"
	PaddingLg   Padding = "lg"
)

const (
	buttonBaseClass  = "inline-flex items-center justify-center font-medium rounded-lg transition-colors focus:outline-none focus:ring-2 focus:ring-offset-2"
	buttonMutedClass = "opacity-50 cursor-not-allowed pointer-events-none"
	cardBaseClass    = "bg-white rounded-xl shadow-sm border border-gray-200"
	defaultVariant   = VariantPrimary
	defaultSize      = SizeMd
	defaultPadding   = PaddingMd
)

var variantClasses = map[Variant]string{
	VariantPrimary:   "bg-blue-600 text-white hover:bg-blue-700 focus:ring-blue-500",
	VariantSecondary: "bg-gray-100 text-gray-900 hover:bg-gray-200 focus:ring-gray-400",
	VariantDanger:    "bg-red-600 text-white hover:bg-red-700 focus:ring-red-500",
	VariantGhost:     "bg-transparent text-gray-700 hover:bg-gray-100 focus:ring-gray-300",
}

var sizeClasses = map[Size]string{
	SizeSm: "px-3 py-1.5 text-sm",
	SizeMd: "px-4 py-2 text-base",
	SizeLg: "px-6 py-3 text-lg",
}

var paddingClasses = map[Padding]string{
	PaddingNone: "",
	PaddingSm:   "p-3",
	PaddingMd:   "p-5",
	PaddingLg:   "p-8",
}

type ButtonProps struct {
	Variant  Variant
	Size     Size
	Type     string
	Disabled bool
	// Class is appended after the computed classes.
	Class string
	// Attrs are forwarded to the element as is.
	Attrs templ.Attributes
}

type LinkButtonProps struct {
	Href     templ.SafeURL
	Variant  Variant
	Size     Size
	Disabled bool
	Class    string
	Attrs    templ.Attributes
}

type CardProps struct {
	Padding Padding
	Class   string
	Attrs   templ.Attributes
}

func Button(props ButtonProps, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		buttonType := props.Type
		if buttonType == "" {
			buttonType = "button"
		}

		class := buttonClass(props.Variant, props.Size, props.Disabled, props.Class)

		if _, err := fmt.Fprintf(w, `<button type="%s" class="%s"`, templ.EscapeString(buttonType), templ.EscapeString(class)); err != nil {
			return err
		}
		if props.Disabled {
			if _, err := io.WriteString(w, ` disabled aria-disabled="true"`); err != nil {
				return err
			}
		}
		if err := writeAttrs(ctx, w, props.Attrs, "type", "class", "disabled"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if err := renderChildren(ctx, w, children); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</button>")
		return err
	})
}

// LinkButton looks like a Button but navigates. A disabled link has no href.
func LinkButton(props LinkButtonProps, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := buttonClass(props.Variant, props.Size, props.Disabled, props.Class)

		if _, err := fmt.Fprintf(w, `<a class="%s"`, templ.EscapeString(class)); err != nil {
			return err
		}
		if props.Disabled {
			if _, err := io.WriteString(w, ` aria-disabled="true" tabindex="-1"`); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, ` href="%s"`, templ.EscapeString(string(props.Href))); err != nil {
				return err
			}
		}
		if err := writeAttrs(ctx, w, props.Attrs, "class", "href"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if err := renderChildren(ctx, w, children); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</a>")
		return err
	})
}

func Card(props CardProps, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		padding, ok := paddingClasses[props.Padding]
		if !ok {
			padding = paddingClasses[defaultPadding]
		}

		class := joinClasses(cardBaseClass, padding, props.Class)

		if _, err := fmt.Fprintf(w, `<div class="%s"`, templ.EscapeString(class)); err != nil {
			return err
		}
		if err := writeAttrs(ctx, w, props.Attrs, "class"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if err := renderChildren(ctx, w, children); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}

// Text renders s as escaped text.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

func buttonClass(variant Variant, size Size, disabled bool, extra string) string {
	variantClass, ok := variantClasses[variant]
	if !ok {
		variantClass = variantClasses[defaultVariant]
	}

	sizeClass, ok := sizeClasses[size]
	if !ok {
		sizeClass = sizeClasses[defaultSize]
	}

	muted := ""
	if disabled {
		muted = buttonMutedClass
	}

	return joinClasses(buttonBaseClass, variantClass, sizeClass, muted, extra)
}

func joinClasses(classes ...string) string {
	nonEmpty := slices.DeleteFunc(classes, func(c string) bool { return strings.TrimSpace(c) == "" })
	return strings.Join(nonEmpty, " ")
}

// writeAttrs renders attrs through templ, skipping the ones the component owns.
// Values templ has no attribute form for are written as their string form.
func writeAttrs(ctx context.Context, w io.Writer, attrs templ.Attributes, reserved ...string) error {
	forwarded := make(templ.Attributes, len(attrs))
	for k, v := range attrs {
		if slices.Contains(reserved, k) {
			continue
		}

		switch v := v.(type) {
		case nil:
		case bool, string:
			forwarded[k] = v
		case templ.SafeURL:
			forwarded[k] = string(v)
		default:
			forwarded[k] = fmt.Sprint(v)
		}
	}

	return templ.RenderAttributes(ctx, w, forwarded)
}

func renderChildren(ctx context.Context, w io.Writer, children []templ.Component) error {
	for _, child := range children {
		if child == nil {
			continue
		}
		if err := child.Render(ctx, w); err != nil {
			return err
		}
	}

	return nil
}
