/*
Package config loads and validates sitepatch patch files.

	            +-------------+
	            |   Config    |
	            |  (Patches)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Replaces hardcoded file names and embedded replacement blocks with a file
- Selects a parser by file extension
- Validates every patch and edit before any file is touched
- Resolves edits into text.Rule values

🔄 Flow:
1. Reads the config file
2. Parses format-specific syntax
3. Resolves root relative to the config file
4. Validates patches and edits
5. Patch.Rules reads replacement files and builds rules

📝 Schema (YAML):

	root: ./site
	backup: true
	patches:
	  - name: dark-mode
	    files: [index.html]
	    edits:
	      - name: head
	        literal: "</head>"
	        replacement: |
	          <link rel="stylesheet" href="dark-mode.css">
	          </head>
	      - name: medidas
	        region:
	          start: "<!-- SECCIÓN 4: MEDIDAS DISPONIBLES -->"
	          end: "</section>"
	        replacement_file: medidas-nuevas.html
	        trim: true

📝 Schema (HCL):

	root = "./site"

	patch "dark-mode" {
	  files = ["index.html"]

	  edit "head" {
	    literal     = "</head>"
	    replacement = "<script src=\"dark-mode.js\" defer></script>\n</head>"
	  }

	  edit "medidas" {
	    region {
	      start = "<!-- SECCIÓN 4: MEDIDAS DISPONIBLES -->"
	      end   = "</section>"
	    }
	    replacement_file = "medidas-nuevas.html"
	    trim             = true
	  }
	}

HCL configs may reference the environment as env.NAME.
*/
package config
