package catalog

var defaultCatalog = MustNew(
	Entry{
		Type:    Empresa,
		Aliases: []string{"empresas", "company", "companies"},
		Token:   "EMPRECSV",
		Archive: "Empresas",
		Columns: []string{
			"cnpj_basico",
			"razao_social",
			"natureza_juridica",
			"qualificacao_responsavel",
			"capital_social",
			"porte_empresa",
			"ente_federativo_responsavel",
		},
	},
	Entry{
		Type:    Estabelecimento,
		Aliases: []string{"estabelecimentos", "establishment", "establishments"},
		Token:   "ESTABELE",
		Archive: "Estabelecimentos",
		Columns: []string{
			"cnpj_basico", "cnpj_ordem", "cnpj_dv", "identificador_matriz_filial", "nome_fantasia", "situacao_cadastral",
			"data_situacao_cadastral", "motivo_situacao_cadastral", "nome_cidade_exterior", "pais", "data_inicio_atividade",
			"cnae_fiscal_principal", "cnae_fiscal_secundaria", "tipo_logradouro", "logradouro", "numero", "complemento", "bairro",
			"cep", "uf", "municipio", "ddd_1", "telefone_1", "ddd_2", "telefone_2", "ddd_fax", "fax", "correio_eletronico",
			"situacao_especial", "data_situacao_especial",
		},
	},
	Entry{
		Type:    Socio,
		Aliases: []string{"socios", "partner", "partners"},
		Token:   "SOCIOCSV",
		Archive: "Socios",
		Columns: []string{
			"cnpj_basico", "identificador_socio", "nome_socio_razao_social", "cpf_cnpj_socio", "qualificacao_socio",
			"data_entrada_sociedade", "pais", "representante_legal", "nome_do_representante", "qualificacao_representante_legal",
			"faixa_etaria",
		},
	},
	Entry{
		Type:    Cnae,
		Aliases: []string{"cnaes", "industry-code", "industry-codes"},
		Token:   "CNAECSV",
		Archive: "Cnaes",
		Columns: []string{"codigo_cnae", "descricao_cnae"},
	},
	Entry{
		Type:    Natureza,
		Aliases: []string{"naturezas", "natju", "legal-nature", "legal-natures"},
		Token:   "NATJUCSV",
		Archive: "Naturezas",
		Columns: []string{"codigo_natureza", "descricao_natureza"},
	},
	Entry{
		Type:    Municipio,
		Aliases: []string{"municipios", "munic", "municipality", "municipalities"},
		Token:   "MUNICCSV",
		Archive: "Municipios",
		Columns: []string{"codigo_municipio", "descricao_municipio"},
	},
	Entry{
		Type:    Simples,
		Token:   "SIMPLES",
		Archive: "Simples",
		Columns: []string{
			"cnpj_basico", "opcao_pelo_simples", "data_opcao_simples", "data_exclusao_simples", "opcao_mei", "data_opcao_mei", "data_exclusao_mei",
		},
	},
	Entry{
		Type:    Motivo,
		Aliases: []string{"motivos", "moti"},
		Token:   "MOTICSV",
		Archive: "Motivos",
		Columns: []string{"codigo_motivo", "descricao_motivo"},
	},
	Entry{
		Type:    Pais,
		Aliases: []string{"paises"},
		Token:   "PAISCSV",
		Archive: "Paises",
		Columns: []string{"codigo_pais", "descricao_pais"},
	},
	Entry{
		Type:    Qualificacao,
		Aliases: []string{"qualificacoes", "quals"},
		Token:   "QUALSCSV",
		Archive: "Qualificacoes",
		Columns: []string{"codigo_qualificacao", "descricao_qualificacao"},
	},
)

// Default returns the Receita Federal catalog.
func Default() *Catalog { return defaultCatalog }
