// Package pom parses Maven project descriptors: XML structure, property
// substitution, parent inheritance, dependency management, profiles, and
// exclusions — adapted from the Maven parser's XML decoding but extended
// for this engine's resolver instead of static dependency listing.
package pom

import "encoding/xml"

// Project is the subset of pom.xml this engine needs to resolve a
// dependency graph. Unknown elements are ignored by encoding/xml.
type Project struct {
	XMLName              xml.Name         `xml:"project"`
	GroupID              string           `xml:"groupId"`
	ArtifactID            string          `xml:"artifactId"`
	Version              string           `xml:"version"`
	Packaging            string           `xml:"packaging"`
	Parent               *Parent          `xml:"parent"`
	Properties           Properties       `xml:"properties"`
	Dependencies         []Dependency     `xml:"dependencies>dependency"`
	DependencyManagement ManagementBlock  `xml:"dependencyManagement"`
	Profiles             []Profile        `xml:"profiles>profile"`
}

// ManagementBlock holds <dependencyManagement><dependencies>.
type ManagementBlock struct {
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// Parent is the <parent> reference used for inheritance.
type Parent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

// Dependency is a single <dependency> entry, in either <dependencies> or
// <dependencyManagement><dependencies>.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Scope      string      `xml:"scope"`
	Type       string      `xml:"type"`
	Classifier string      `xml:"classifier"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Exclusion is a <exclusion> entry under a dependency; groupId/artifactId
// may be "*" wildcards, which resolve to an empty pattern field.
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// Profile is a <profile> entry; only the fields needed to decide
// activation and to merge its dependency sections are kept.
type Profile struct {
	ID                   string          `xml:"id"`
	Activation           Activation      `xml:"activation"`
	Dependencies         []Dependency    `xml:"dependencies>dependency"`
	DependencyManagement ManagementBlock `xml:"dependencyManagement"`
}

// Activation is a <activation> block.
type Activation struct {
	ActiveByDefault string             `xml:"activeByDefault"`
	JDK             string             `xml:"jdk"`
	OS              ActivationOS       `xml:"os"`
	Property        ActivationProperty `xml:"property"`
}

type ActivationOS struct {
	Name   string `xml:"name"`
	Family string `xml:"family"`
}

type ActivationProperty struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

// Properties decodes an arbitrary <properties> block into a name→value
// map; encoding/xml has no direct "map of elements" support, so this
// implements xml.Unmarshaler over the raw token stream.
type Properties map[string]string

func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	out := make(Properties)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			out[t.Name.Local] = value
		case xml.EndElement:
			if t.Name == start.Name {
				*p = out
				return nil
			}
		}
	}
}

// Parse decodes raw pom.xml bytes into a Project.
func Parse(data []byte) (*Project, error) {
	var proj Project
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, err
	}
	return &proj, nil
}
