package prefixer

// properties lists the declarations that still need vendor copies and for which vendors
var properties = map[string][]Vendor{
	"align-content":              {Webkit},
	"align-items":                {Webkit},
	"align-self":                 {Webkit},
	"animation":                  {Webkit},
	"animation-delay":            {Webkit},
	"animation-direction":        {Webkit},
	"animation-duration":         {Webkit},
	"animation-fill-mode":        {Webkit},
	"animation-iteration-count":  {Webkit},
	"animation-name":             {Webkit},
	"animation-play-state":       {Webkit},
	"animation-timing-function":  {Webkit},
	"appearance":                 {Webkit, Moz},
	"backdrop-filter":            {Webkit},
	"backface-visibility":        {Webkit},
	"box-decoration-break":       {Webkit},
	"clip-path":                  {Webkit},
	"column-count":               {Webkit, Moz},
	"column-gap":                 {Webkit, Moz},
	"column-rule":                {Webkit, Moz},
	"column-width":               {Webkit, Moz},
	"columns":                    {Webkit, Moz},
	"filter":                     {Webkit},
	"flex":                       {Webkit, Ms},
	"flex-basis":                 {Webkit},
	"flex-direction":             {Webkit},
	"flex-flow":                  {Webkit},
	"flex-grow":                  {Webkit},
	"flex-shrink":                {Webkit},
	"flex-wrap":                  {Webkit},
	"font-feature-settings":      {Webkit, Moz},
	"hyphens":                    {Webkit, Moz, Ms},
	"justify-content":            {Webkit},
	"mask":                       {Webkit},
	"mask-image":                 {Webkit},
	"mask-position":              {Webkit},
	"mask-repeat":                {Webkit},
	"mask-size":                  {Webkit},
	"order":                      {Webkit},
	"perspective":                {Webkit},
	"perspective-origin":         {Webkit},
	"tab-size":                   {Moz, O},
	"text-size-adjust":           {Webkit, Moz, Ms},
	"transform":                  {Webkit, Ms},
	"transform-origin":           {Webkit, Ms},
	"transform-style":            {Webkit},
	"transition":                 {Webkit},
	"transition-delay":           {Webkit},
	"transition-duration":        {Webkit},
	"transition-property":        {Webkit},
	"transition-timing-function": {Webkit},
	"user-select":                {Webkit, Moz, Ms},
	"writing-mode":               {Webkit, Ms},
}

// displayValues lists prefixed spellings of display values
var displayValues = map[string]map[Vendor]string{
	"flex": {
		Webkit: "-webkit-flex",
		Ms:     "-ms-flexbox",
	},
	"inline-flex": {
		Webkit: "-webkit-inline-flex",
		Ms:     "-ms-inline-flexbox",
	},
}

// prefixedAtRules lists at-rules that get vendor twins
var prefixedAtRules = map[string][]Vendor{
	"@keyframes": {Webkit},
}

// vendorsFor reports which vendors a property has prefixed forms for
func vendorsFor(property string) ([]Vendor, bool) {
	v, ok := properties[property]
	return v, ok
}

// knownPrefixedDisplay returns the vendor owning a prefixed display value
func knownPrefixedDisplay(value string) (Vendor, bool) {
	for _, forms := range displayValues {
		for v, form := range forms {
			if form == value {
				return v, true
			}
		}
	}

	return "", false
}
