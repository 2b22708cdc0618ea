// Package config carga la configuración del detector desde valores por
// defecto, archivo de configuración, variables de entorno FTOOLS_* y flags,
// y la traduce a opciones del engine. Cualquier valor inválido se devuelve
// como *entities.ConfigError antes de iniciar el escaneo.
package config
