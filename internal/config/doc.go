// Package config provides configuration management for lighter.
//
// The configuration lives in a single YAML file, by default
// ~/.config/lighter/config.yaml. The LIGHTER_CONFIG environment variable or the
// --config flag point lighter at another file. The path is resolved once at
// startup and handed to Load and Save explicitly.
//
// # Configuration Structure
//
//	shell:
//	  preExec: "source ~/.profile"
//	self-update:
//	  repository: "owner/lighter"
//	environments:
//	  - type: network
//	    name: network
//	    networkName: public
//	  - type: traefik
//	    name: router
//	    dependencies: [network]
//	  - type: docker-compose
//	    name: shop
//	    description: "Web shop"
//	    dependencies: [router]
//	    path: /home/dev/projects/shop
//	    containers: [php, nginx, mysql]
//	    shell: php
//	    initContainers:
//	      - migrate
//	      - container: seed
//	        arguments: [--fixtures]
//
// # Environment Types
//
//   - network: a bare docker network, networkName defaults to "public"
//   - traefik: the singleton reverse proxy container
//   - docker-compose: selected services of a compose file in path
//
// Name defaults to the type and description defaults to the name, so a
// minimal network entry only needs its type.
package config
